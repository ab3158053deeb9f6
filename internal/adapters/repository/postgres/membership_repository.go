package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agrokadry/agrojob-core/internal/core/company"
	pgdb "github.com/agrokadry/agrojob-core/internal/platform/db/postgres"
)

const membershipColumns = "id, company_id, user_id, role, joined_at"

// MembershipRepository は PostgreSQL を利用した会社メンバーシップ永続化の
// 実装です。
type MembershipRepository struct {
	pool pgdb.Queryer
}

// NewMembershipRepository は MembershipRepository を生成します。
func NewMembershipRepository(pool pgdb.Queryer) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// Add はメンバーを追加します。(company_id, user_id) の一意制約違反は
// ErrMemberAlreadyExists として返却されます。
func (r *MembershipRepository) Add(ctx context.Context, m *company.Membership) (*company.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO company_members (company_id, user_id, role, joined_at)
        VALUES ($1, $2, $3, $4)
        RETURNING `+membershipColumns+`
    `, m.CompanyID, m.UserID, m.Role, m.JoinedAt)

	added, err := scanMembership(row)
	if err != nil {
		return nil, translateMembershipPgError(err)
	}
	return added, nil
}

// UpdateRole はメンバーの役割を変更します。
func (r *MembershipRepository) UpdateRole(ctx context.Context, companyID int64, userID, role string) (*company.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE company_members
           SET role = $1
         WHERE company_id = $2 AND user_id = $3
        RETURNING `+membershipColumns+`
    `, role, companyID, userID)

	updated, err := scanMembership(row)
	if err != nil {
		return nil, translateMembershipPgError(err)
	}
	return updated, nil
}

// Remove はメンバーを削除します。
func (r *MembershipRepository) Remove(ctx context.Context, companyID int64, userID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM company_members WHERE company_id = $1 AND user_id = $2`, companyID, userID)
	if err != nil {
		return translateMembershipPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return company.ErrMemberNotFound
	}
	return nil
}

// Find は会社とユーザーの組でメンバーシップを取得します。
func (r *MembershipRepository) Find(ctx context.Context, companyID int64, userID string) (*company.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+membershipColumns+`
          FROM company_members
         WHERE company_id = $1 AND user_id = $2
         LIMIT 1
    `, companyID, userID)

	found, err := scanMembership(row)
	if err != nil {
		return nil, translateMembershipPgError(err)
	}
	return found, nil
}

// ListByCompany は会社のメンバー一覧を参加日時順で取得します。
func (r *MembershipRepository) ListByCompany(ctx context.Context, companyID int64) ([]*company.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+membershipColumns+`
          FROM company_members
         WHERE company_id = $1
         ORDER BY joined_at ASC, id ASC
    `, companyID)
	if err != nil {
		return nil, translateMembershipPgError(err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

// ListByUser はユーザーが所属する全メンバーシップを取得します。
func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]*company.Membership, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+membershipColumns+`
          FROM company_members
         WHERE user_id = $1
         ORDER BY joined_at ASC, id ASC
    `, userID)
	if err != nil {
		return nil, translateMembershipPgError(err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

func collectMemberships(rows pgx.Rows) ([]*company.Membership, error) {
	var memberships []*company.Membership
	for rows.Next() {
		found, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, found)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memberships, nil
}

func scanMembership(row pgx.Row) (*company.Membership, error) {
	var (
		id        int64
		companyID int64
		userID    string
		role      string
		joinedAt  time.Time
	)

	if err := row.Scan(&id, &companyID, &userID, &role, &joinedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrMemberNotFound
		}
		return nil, err
	}

	return &company.Membership{
		ID:        id,
		CompanyID: companyID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  joinedAt,
	}, nil
}

func translateMembershipPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return company.ErrMemberAlreadyExists
		case foreignKeyViolationCode:
			return company.ErrCompanyNotFound
		}
	}
	return err
}
