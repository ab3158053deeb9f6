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

	"github.com/agrokadry/agrojob-core/internal/core/vacancy"
	pgdb "github.com/agrokadry/agrojob-core/internal/platform/db/postgres"
)

const vacancyColumns = "id, company_id, created_by, title, description, salary, category, location, is_seasonal, is_active, views_count, posted_at, updated_at"

// VacancyRepository は PostgreSQL を利用した求人永続化の実装です。
// Requirements / Offers は付随テーブルに保持され、編集のたびに全削除・
// 再挿入で置き換えられます。List は付随レコードを読み込みません。
type VacancyRepository struct {
	pool pgdb.Queryer
}

// NewVacancyRepository は VacancyRepository を生成します。
func NewVacancyRepository(pool pgdb.Queryer) *VacancyRepository {
	return &VacancyRepository{pool: pool}
}

// Create は求人と付随レコードを新規作成します。
func (r *VacancyRepository) Create(ctx context.Context, v *vacancy.Vacancy) (*vacancy.Vacancy, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO vacancies (company_id, created_by, title, description, salary, category, location, is_seasonal, is_active, posted_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING `+vacancyColumns+`
    `, v.CompanyID, nullableString(v.CreatedBy), v.Title, v.Description, v.Salary, v.Category, v.Location, v.IsSeasonal, v.IsActive, v.PostedAt, v.UpdatedAt)

	created, err := scanVacancy(row)
	if err != nil {
		return nil, translateVacancyPgError(err)
	}

	if err := r.replaceLines(ctx, exec, created.ID, v.Requirements, v.Offers); err != nil {
		return nil, translateVacancyPgError(err)
	}
	created.Requirements = v.Requirements
	created.Offers = v.Offers

	return created, nil
}

// Update は求人を更新し、付随レコードを置き換えます。
func (r *VacancyRepository) Update(ctx context.Context, v *vacancy.Vacancy) (*vacancy.Vacancy, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE vacancies
           SET title = $1,
               description = $2,
               salary = $3,
               category = $4,
               location = $5,
               is_seasonal = $6,
               is_active = $7,
               updated_at = $8
         WHERE id = $9
        RETURNING `+vacancyColumns+`
    `, v.Title, v.Description, v.Salary, v.Category, v.Location, v.IsSeasonal, v.IsActive, v.UpdatedAt, v.ID)

	updated, err := scanVacancy(row)
	if err != nil {
		return nil, translateVacancyPgError(err)
	}

	if err := r.replaceLines(ctx, exec, updated.ID, v.Requirements, v.Offers); err != nil {
		return nil, translateVacancyPgError(err)
	}
	updated.Requirements = v.Requirements
	updated.Offers = v.Offers

	return updated, nil
}

// Delete は求人を削除します。応募が残っている場合は外部キー制約により
// ErrVacancyHasApplications を返します。付随レコードは連鎖削除されます。
func (r *VacancyRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM vacancies WHERE id = $1`, id)
	if err != nil {
		return translateVacancyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return vacancy.ErrVacancyNotFound
	}
	return nil
}

// FindByID は ID で求人を付随レコード込みで取得します。
func (r *VacancyRepository) FindByID(ctx context.Context, id int64) (*vacancy.Vacancy, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+vacancyColumns+`
          FROM vacancies
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanVacancy(row)
	if err != nil {
		return nil, translateVacancyPgError(err)
	}

	found.Requirements, err = r.loadLines(ctx, exec, "vacancy_requirements", id)
	if err != nil {
		return nil, translateVacancyPgError(err)
	}
	found.Offers, err = r.loadLines(ctx, exec, "vacancy_offers", id)
	if err != nil {
		return nil, translateVacancyPgError(err)
	}

	return found, nil
}

// List は求人の一覧を掲載日時降順で取得します。
func (r *VacancyRepository) List(ctx context.Context, filter vacancy.ListVacanciesFilter) ([]*vacancy.Vacancy, string, error) {
	if filter.Limit <= 0 {
		return nil, "", vacancy.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", vacancy.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		conditions = append(conditions, "company_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, "is_active = $"+strconv.Itoa(len(args)))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		args = append(args, category)
		conditions = append(conditions, "category = $"+strconv.Itoa(len(args)))
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
        SELECT ` + vacancyColumns + `
          FROM vacancies` + whereClause + `
         ORDER BY posted_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateVacancyPgError(err)
	}
	defer rows.Close()

	var vacancies []*vacancy.Vacancy
	for rows.Next() {
		found, err := scanVacancy(rows)
		if err != nil {
			return nil, "", translateVacancyPgError(err)
		}
		vacancies = append(vacancies, found)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateVacancyPgError(err)
	}

	var nextToken string
	if len(vacancies) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		vacancies = vacancies[:filter.Limit]
	}

	return vacancies, nextToken, nil
}

// IncrementViews は閲覧数を 1 加算します。
func (r *VacancyRepository) IncrementViews(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `UPDATE vacancies SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return translateVacancyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return vacancy.ErrVacancyNotFound
	}
	return nil
}

func (r *VacancyRepository) replaceLines(ctx context.Context, exec pgdb.Queryer, vacancyID int64, requirements, offers []string) error {
	for table, lines := range map[string][]string{
		"vacancy_requirements": requirements,
		"vacancy_offers":       offers,
	} {
		if _, err := exec.Exec(ctx, `DELETE FROM `+table+` WHERE vacancy_id = $1`, vacancyID); err != nil {
			return err
		}
		for position, content := range lines {
			if _, err := exec.Exec(ctx, `INSERT INTO `+table+` (vacancy_id, position, content) VALUES ($1, $2, $3)`, vacancyID, position, content); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *VacancyRepository) loadLines(ctx context.Context, exec pgdb.Queryer, table string, vacancyID int64) ([]string, error) {
	rows, err := exec.Query(ctx, `SELECT content FROM `+table+` WHERE vacancy_id = $1 ORDER BY position ASC`, vacancyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		lines = append(lines, content)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func scanVacancy(row pgx.Row) (*vacancy.Vacancy, error) {
	var (
		id                  int64
		companyID           int64
		createdBy           sql.NullString
		title               string
		description         string
		salary              string
		category            string
		location            string
		isSeasonal          bool
		isActive            bool
		viewsCount          int
		postedAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &companyID, &createdBy, &title, &description, &salary, &category, &location, &isSeasonal, &isActive, &viewsCount, &postedAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vacancy.ErrVacancyNotFound
		}
		return nil, err
	}

	return &vacancy.Vacancy{
		ID:          id,
		CompanyID:   companyID,
		CreatedBy:   stringPtr(createdBy),
		Title:       title,
		Description: description,
		Salary:      salary,
		Category:    category,
		Location:    location,
		IsSeasonal:  isSeasonal,
		IsActive:    isActive,
		ViewsCount:  viewsCount,
		PostedAt:    postedAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func translateVacancyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == foreignKeyViolationCode {
			switch pgErr.ConstraintName {
			case "vacancies_company_id_fkey":
				return vacancy.ErrCompanyNotFound
			case "applications_vacancy_id_fkey":
				return vacancy.ErrVacancyHasApplications
			}
		}
	}
	return err
}
