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

	"github.com/agrokadry/agrojob-core/internal/core/company"
	pgdb "github.com/agrokadry/agrojob-core/internal/platform/db/postgres"
)

const companyColumns = "id, name, description, contact_person, contact_phone, contact_email, is_verified, created_at, updated_at"

// CompanyRepository は PostgreSQL を利用した会社永続化の実装です。
type CompanyRepository struct {
	pool pgdb.Queryer
}

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// Create は会社を新規作成します。名前の一意制約 (大文字小文字を区別しない)
// に違反した場合は ErrNameAlreadyExists を返します。
func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO companies (name, description, contact_person, contact_phone, contact_email, is_verified, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+companyColumns+`
    `, c.Name, nullableString(c.Description), nullableString(c.ContactPerson), nullableString(c.ContactPhone), nullableString(c.ContactEmail), c.IsVerified, c.CreatedAt, c.UpdatedAt)

	created, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return created, nil
}

// Update は会社情報を更新します。
func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE companies
           SET name = $1,
               description = $2,
               contact_person = $3,
               contact_phone = $4,
               contact_email = $5,
               is_verified = $6,
               updated_at = $7
         WHERE id = $8
        RETURNING `+companyColumns+`
    `, c.Name, nullableString(c.Description), nullableString(c.ContactPerson), nullableString(c.ContactPhone), nullableString(c.ContactEmail), c.IsVerified, c.UpdatedAt, c.ID)

	updated, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return updated, nil
}

// Delete は会社を削除します。求人が残っている場合は外部キー制約により
// ErrCompanyHasVacancies を返します。
func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return translateCompanyPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrCompanyNotFound
	}
	return nil
}

// FindByID は ID で会社を取得します。
func (r *CompanyRepository) FindByID(ctx context.Context, id int64) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+companyColumns+`
          FROM companies
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

// FindByName は名前で会社を取得します。大文字小文字は区別しません。
func (r *CompanyRepository) FindByName(ctx context.Context, name string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+companyColumns+`
          FROM companies
         WHERE lower(name) = lower($1)
         LIMIT 1
    `, name)

	found, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

// List は会社の一覧を取得します。
func (r *CompanyRepository) List(ctx context.Context, filter company.ListCompaniesFilter) ([]*company.Company, string, error) {
	if filter.Limit <= 0 {
		return nil, "", company.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", company.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		conditions = append(conditions, "is_verified = $"+strconv.Itoa(len(args)))
	}
	if search := strings.TrimSpace(filter.NameSearch); search != "" {
		args = append(args, "%"+search+"%")
		conditions = append(conditions, "name ILIKE $"+strconv.Itoa(len(args)))
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
        SELECT ` + companyColumns + `
          FROM companies` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateCompanyPgError(err)
	}
	defer rows.Close()

	var companies []*company.Company
	for rows.Next() {
		found, err := scanCompany(rows)
		if err != nil {
			return nil, "", translateCompanyPgError(err)
		}
		companies = append(companies, found)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateCompanyPgError(err)
	}

	var nextToken string
	if len(companies) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		companies = companies[:filter.Limit]
	}

	return companies, nextToken, nil
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		id                   int64
		name                 string
		description          sql.NullString
		contactPerson        sql.NullString
		contactPhone         sql.NullString
		contactEmail         sql.NullString
		isVerified           bool
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &description, &contactPerson, &contactPhone, &contactEmail, &isVerified, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}

	return &company.Company{
		ID:            id,
		Name:          name,
		Description:   stringPtr(description),
		ContactPerson: stringPtr(contactPerson),
		ContactPhone:  stringPtr(contactPhone),
		ContactEmail:  stringPtr(contactEmail),
		IsVerified:    isVerified,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func translateCompanyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return company.ErrNameAlreadyExists
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "vacancies_company_id_fkey" {
				return company.ErrCompanyHasVacancies
			}
		}
	}
	return err
}
