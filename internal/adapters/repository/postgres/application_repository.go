package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agrokadry/agrojob-core/internal/core/application"
	pgdb "github.com/agrokadry/agrojob-core/internal/platform/db/postgres"
)

const applicationColumns = "id, vacancy_id, user_id, resume_id, status, cover_letter, employer_comment, applied_at, status_updated_at"

// ApplicationRepository は PostgreSQL を利用した応募永続化の実装です。
type ApplicationRepository struct {
	pool pgdb.Queryer
}

// NewApplicationRepository は ApplicationRepository を生成します。
func NewApplicationRepository(pool pgdb.Queryer) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Create は応募を新規作成します。(vacancy_id, user_id) の一意制約違反は
// ErrAlreadyApplied として返却されます。
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO applications (vacancy_id, user_id, resume_id, status, cover_letter, applied_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+applicationColumns+`
    `, app.VacancyID, app.UserID, nullableInt64(app.ResumeID), app.Status, nullableString(app.CoverLetter), app.AppliedAt)

	created, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return created, nil
}

// FindByID は ID で応募を取得します。
func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+applicationColumns+`
          FROM applications
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return found, nil
}

// UpdateStatus はステータスと更新時刻を書き込みます。comment が nil の
// 場合、既存の雇用側コメントは保持されます。
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status application.Status, comment *string, statusUpdatedAt time.Time) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE applications
           SET status = $1,
               employer_comment = COALESCE($2, employer_comment),
               status_updated_at = $3
         WHERE id = $4
        RETURNING `+applicationColumns+`
    `, status, nullableString(comment), statusUpdatedAt, id)

	updated, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return updated, nil
}

// HasApplied はユーザーが求人へ応募済みかどうかを返します。
func (r *ApplicationRepository) HasApplied(ctx context.Context, vacancyID int64, userID string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM applications WHERE vacancy_id = $1 AND user_id = $2
        )
    `, vacancyID, userID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// List は応募の一覧を applied_at 降順 (同時刻は登録順 = id 昇順) で取得
// します。
func (r *ApplicationRepository) List(ctx context.Context, filter application.ListFilter) ([]*application.Application, string, error) {
	if filter.Limit <= 0 {
		return nil, "", application.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", application.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, "a.user_id = $"+strconv.Itoa(len(args)))
	}
	if filter.VacancyID != nil {
		args = append(args, *filter.VacancyID)
		conditions = append(conditions, "a.vacancy_id = $"+strconv.Itoa(len(args)))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		conditions = append(conditions, "v.company_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, "a.status = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limitWithBuffer)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT a.id, a.vacancy_id, a.user_id, a.resume_id, a.status, a.cover_letter, a.employer_comment, a.applied_at, a.status_updated_at
          FROM applications a
          JOIN vacancies v ON v.id = a.vacancy_id` + whereClause + `
         ORDER BY a.applied_at DESC, a.id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateApplicationPgError(err)
	}
	defer rows.Close()

	var apps []*application.Application
	for rows.Next() {
		found, err := scanApplication(rows)
		if err != nil {
			return nil, "", translateApplicationPgError(err)
		}
		apps = append(apps, found)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateApplicationPgError(err)
	}

	var nextToken string
	if len(apps) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		apps = apps[:filter.Limit]
	}

	return apps, nextToken, nil
}

// CountByUser はユーザーの応募件数を返します。
func (r *ApplicationRepository) CountByUser(ctx context.Context, userID string, status *application.Status) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var (
		row pgx.Row
	)
	if status != nil {
		row = exec.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE user_id = $1 AND status = $2`, userID, *status)
	} else {
		row = exec.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE user_id = $1`, userID)
	}

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountByVacancy は求人への応募件数を返します。
func (r *ApplicationRepository) CountByVacancy(ctx context.Context, vacancyID int64) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE vacancy_id = $1`, vacancyID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCompany は会社の全求人を横断した応募件数を返します。
func (r *ApplicationRepository) CountByCompany(ctx context.Context, companyID int64) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT COUNT(*)
          FROM applications a
          JOIN vacancies v ON v.id = a.vacancy_id
         WHERE v.company_id = $1
    `, companyID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanApplication(row pgx.Row) (*application.Application, error) {
	var (
		id              int64
		vacancyID       int64
		userID          string
		resumeID        sql.NullInt64
		status          string
		coverLetter     sql.NullString
		employerComment sql.NullString
		appliedAt       time.Time
		statusUpdatedAt sql.NullTime
	)

	if err := row.Scan(&id, &vacancyID, &userID, &resumeID, &status, &coverLetter, &employerComment, &appliedAt, &statusUpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrApplicationNotFound
		}
		return nil, err
	}

	app := &application.Application{
		ID:        id,
		VacancyID: vacancyID,
		UserID:    userID,
		Status:    application.Status(status),
		AppliedAt: appliedAt,
	}
	if resumeID.Valid {
		value := resumeID.Int64
		app.ResumeID = &value
	}
	if coverLetter.Valid {
		value := coverLetter.String
		app.CoverLetter = &value
	}
	if employerComment.Valid {
		value := employerComment.String
		app.EmployerComment = &value
	}
	if statusUpdatedAt.Valid {
		value := statusUpdatedAt.Time
		app.StatusUpdatedAt = &value
	}

	return app, nil
}

func translateApplicationPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return application.ErrAlreadyApplied
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "applications_vacancy_id_fkey":
				return application.ErrVacancyNotFound
			case "applications_resume_id_fkey":
				return application.ErrResumeNotFound
			}
		}
	}
	return err
}
