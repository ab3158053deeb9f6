package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/agrokadry/agrojob-core/internal/core/application"
)

type stubRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanApplication_Success(t *testing.T) {
	t.Parallel()

	appliedAt := time.Now().UTC()
	updatedAt := appliedAt.Add(time.Hour)
	letter := "I would like to join the harvest crew."

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 9 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*int64)) = 42
		*(dest[1].(*int64)) = 7
		*(dest[2].(*string)) = "seeker-1"

		rid := dest[3].(*sql.NullInt64)
		rid.Int64 = 11
		rid.Valid = true

		*(dest[4].(*string)) = string(application.StatusViewed)

		cl := dest[5].(*sql.NullString)
		cl.String = letter
		cl.Valid = true

		*(dest[7].(*time.Time)) = appliedAt

		su := dest[8].(*sql.NullTime)
		su.Time = updatedAt
		su.Valid = true
		return nil
	}}

	app, err := scanApplication(row)
	if err != nil {
		t.Fatalf("scanApplication returned error: %v", err)
	}

	if app.ResumeID == nil || *app.ResumeID != 11 {
		t.Fatalf("expected resume id 11, got %+v", app.ResumeID)
	}
	if app.CoverLetter == nil || *app.CoverLetter != letter {
		t.Fatalf("expected cover letter, got %+v", app.CoverLetter)
	}
	if app.EmployerComment != nil {
		t.Fatalf("expected nil employer comment, got %+v", app.EmployerComment)
	}
	if app.StatusUpdatedAt == nil || !app.StatusUpdatedAt.Equal(updatedAt) {
		t.Fatalf("unexpected status updated at: %+v", app.StatusUpdatedAt)
	}
}

func TestScanApplication_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanApplication(row)
	if !errors.Is(err, application.ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}

func TestTranslateApplicationPgError(t *testing.T) {
	t.Parallel()

	uniqueErr := &pgconn.PgError{Code: uniqueViolationCode}
	if !errors.Is(translateApplicationPgError(uniqueErr), application.ErrAlreadyApplied) {
		t.Fatalf("expected already applied mapping for unique violation")
	}

	vacancyErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "applications_vacancy_id_fkey"}
	if !errors.Is(translateApplicationPgError(vacancyErr), application.ErrVacancyNotFound) {
		t.Fatalf("expected vacancy not found mapping for fk violation")
	}

	resumeErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "applications_resume_id_fkey"}
	if !errors.Is(translateApplicationPgError(resumeErr), application.ErrResumeNotFound) {
		t.Fatalf("expected resume not found mapping for fk violation")
	}

	otherErr := errors.New("random")
	if translateApplicationPgError(otherErr) != otherErr {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestApplicationRepository_List_WithNextToken(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewApplicationRepository(mock)
	vacancyID := int64(7)

	query := regexp.QuoteMeta(`
        SELECT a.id, a.vacancy_id, a.user_id, a.resume_id, a.status, a.cover_letter, a.employer_comment, a.applied_at, a.status_updated_at
          FROM applications a
          JOIN vacancies v ON v.id = a.vacancy_id WHERE a.vacancy_id = $1
         ORDER BY a.applied_at DESC, a.id ASC
         LIMIT $2
        OFFSET $3
    `)

	now := time.Now().UTC()
	columns := []string{"id", "vacancy_id", "user_id", "resume_id", "status", "cover_letter", "employer_comment", "applied_at", "status_updated_at"}
	rows := pgxmock.NewRows(columns).
		AddRow(int64(1), vacancyID, "seeker-1", nil, string(application.StatusPending), nil, nil, now, nil).
		AddRow(int64(2), vacancyID, "seeker-2", nil, string(application.StatusPending), nil, nil, now, nil).
		AddRow(int64(3), vacancyID, "seeker-3", nil, string(application.StatusPending), nil, nil, now, nil)

	mock.ExpectQuery(query).
		WithArgs(vacancyID, 3, 0).
		WillReturnRows(rows)

	apps, nextToken, err := repo.List(context.Background(), application.ListFilter{VacancyID: &vacancyID, Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(apps) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(apps))
	}

	if apps[0].ID != 1 || apps[1].ID != 2 {
		t.Fatalf("expected applications in insertion order, got %d, %d", apps[0].ID, apps[1].ID)
	}

	if nextToken != "2" {
		t.Fatalf("expected next token '2', got %s", nextToken)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApplicationRepository_List_InvalidArguments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewApplicationRepository(mock)

	if _, _, err := repo.List(context.Background(), application.ListFilter{Limit: 0}); !errors.Is(err, application.ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}

	if _, _, err := repo.List(context.Background(), application.ListFilter{Limit: 1, Offset: -1}); !errors.Is(err, application.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func TestApplicationRepository_HasApplied(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewApplicationRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT EXISTS (
            SELECT 1 FROM applications WHERE vacancy_id = $1 AND user_id = $2
        )
    `)

	mock.ExpectQuery(query).
		WithArgs(int64(7), "seeker-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	applied, err := repo.HasApplied(context.Background(), 7, "seeker-1")
	if err != nil {
		t.Fatalf("HasApplied returned error: %v", err)
	}
	if !applied {
		t.Fatalf("expected applied to be true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
