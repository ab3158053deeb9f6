package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/agrokadry/agrojob-core/internal/core/access"
	"github.com/agrokadry/agrojob-core/internal/core/application"
	pgdb "github.com/agrokadry/agrojob-core/internal/platform/db/postgres"
)

// VacancyDirectory は認可判定と応募の前提条件検証に使う求人参照の実装です。
type VacancyDirectory struct {
	pool pgdb.Queryer
}

// NewVacancyDirectory は VacancyDirectory を生成します。
func NewVacancyDirectory(pool pgdb.Queryer) *VacancyDirectory {
	return &VacancyDirectory{pool: pool}
}

// FindRef は求人の最小情報を取得します。
func (d *VacancyDirectory) FindRef(ctx context.Context, vacancyID int64) (*access.VacancyRef, error) {
	exec := pgdb.QueryerFromContext(ctx, d.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, company_id, created_by, is_active
          FROM vacancies
         WHERE id = $1
         LIMIT 1
    `, vacancyID)

	var (
		ref       access.VacancyRef
		createdBy *string
	)
	if err := row.Scan(&ref.ID, &ref.CompanyID, &createdBy, &ref.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, access.ErrVacancyNotFound
		}
		return nil, err
	}
	ref.CreatedBy = createdBy

	return &ref, nil
}

// MembershipDirectory は認可判定に使う会社メンバーシップ参照の実装です。
type MembershipDirectory struct {
	pool pgdb.Queryer
}

// NewMembershipDirectory は MembershipDirectory を生成します。
func NewMembershipDirectory(pool pgdb.Queryer) *MembershipDirectory {
	return &MembershipDirectory{pool: pool}
}

// IsMember はユーザーが会社に所属しているかどうかを返します。役割は
// 問いません。
func (d *MembershipDirectory) IsMember(ctx context.Context, userID string, companyID int64) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, d.pool)
	row := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM company_members WHERE company_id = $1 AND user_id = $2
        )
    `, companyID, userID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ResumeDirectory は応募時の履歴書検証に使う履歴書参照の実装です。
type ResumeDirectory struct {
	pool pgdb.Queryer
}

// NewResumeDirectory は ResumeDirectory を生成します。
func NewResumeDirectory(pool pgdb.Queryer) *ResumeDirectory {
	return &ResumeDirectory{pool: pool}
}

// Snapshot は履歴書の最小情報を取得します。
func (d *ResumeDirectory) Snapshot(ctx context.Context, resumeID int64) (*application.ResumeSnapshot, error) {
	exec := pgdb.QueryerFromContext(ctx, d.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id
          FROM resumes
         WHERE id = $1
         LIMIT 1
    `, resumeID)

	var snapshot application.ResumeSnapshot
	if err := row.Scan(&snapshot.ID, &snapshot.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrResumeNotFound
		}
		return nil, err
	}

	return &snapshot, nil
}
