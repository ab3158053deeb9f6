package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/agrokadry/agrojob-core/internal/core/company"
)

func TestTranslateMembershipPgError(t *testing.T) {
	t.Parallel()

	uniqueErr := &pgconn.PgError{Code: uniqueViolationCode}
	if !errors.Is(translateMembershipPgError(uniqueErr), company.ErrMemberAlreadyExists) {
		t.Fatalf("expected member already exists mapping for unique violation")
	}

	fkErr := &pgconn.PgError{Code: foreignKeyViolationCode}
	if !errors.Is(translateMembershipPgError(fkErr), company.ErrCompanyNotFound) {
		t.Fatalf("expected company not found mapping for fk violation")
	}

	otherErr := errors.New("random")
	if translateMembershipPgError(otherErr) != otherErr {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestMembershipRepository_Add_Duplicate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewMembershipRepository(mock)
	joinedAt := time.Now().UTC()

	query := regexp.QuoteMeta(`
        INSERT INTO company_members (company_id, user_id, role, joined_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, company_id, user_id, role, joined_at
    `)

	mock.ExpectQuery(query).
		WithArgs(int64(1), "employer-2", "Manager", joinedAt).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "company_members_company_id_user_id_key"})

	_, err = repo.Add(context.Background(), &company.Membership{
		CompanyID: 1,
		UserID:    "employer-2",
		Role:      "Manager",
		JoinedAt:  joinedAt,
	})
	if !errors.Is(err, company.ErrMemberAlreadyExists) {
		t.Fatalf("expected ErrMemberAlreadyExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMembershipRepository_Remove_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewMembershipRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM company_members WHERE company_id = $1 AND user_id = $2`)).
		WithArgs(int64(1), "stranger").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Remove(context.Background(), 1, "stranger"); !errors.Is(err, company.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMembershipRepository_ListByCompany(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewMembershipRepository(mock)
	joinedAt := time.Now().UTC()

	query := regexp.QuoteMeta(`
        SELECT id, company_id, user_id, role, joined_at
          FROM company_members
         WHERE company_id = $1
         ORDER BY joined_at ASC, id ASC
    `)

	columns := []string{"id", "company_id", "user_id", "role", "joined_at"}
	rows := pgxmock.NewRows(columns).
		AddRow(int64(1), int64(1), "employer-1", "Admin", joinedAt).
		AddRow(int64(2), int64(1), "employer-2", "Manager", joinedAt.Add(time.Hour))

	mock.ExpectQuery(query).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	memberships, err := repo.ListByCompany(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByCompany returned error: %v", err)
	}

	if len(memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(memberships))
	}
	if memberships[0].Role != "Admin" || memberships[1].UserID != "employer-2" {
		t.Fatalf("unexpected memberships: %+v", memberships)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
