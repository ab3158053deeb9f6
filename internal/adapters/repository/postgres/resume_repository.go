package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agrokadry/agrojob-core/internal/core/resume"
	pgdb "github.com/agrokadry/agrojob-core/internal/platform/db/postgres"
)

const resumeColumns = "id, user_id, title, full_name, birth_date, phone, email, location, experience_years, education, experience, skills, about, desired_salary, ready_to_relocate, ready_for_trips, is_active, is_published, created_at, updated_at"

// ResumeRepository は PostgreSQL を利用した履歴書永続化の実装です。
type ResumeRepository struct {
	pool pgdb.Queryer
}

// NewResumeRepository は ResumeRepository を生成します。
func NewResumeRepository(pool pgdb.Queryer) *ResumeRepository {
	return &ResumeRepository{pool: pool}
}

// Create は履歴書を新規作成します。
func (r *ResumeRepository) Create(ctx context.Context, res *resume.Resume) (*resume.Resume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO resumes (user_id, title, full_name, birth_date, phone, email, location, experience_years, education, experience, skills, about, desired_salary, ready_to_relocate, ready_for_trips, is_active, is_published, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        RETURNING `+resumeColumns+`
    `, res.UserID, res.Title, res.FullName, res.BirthDate, nullableString(res.Phone), nullableString(res.Email), nullableString(res.Location), res.ExperienceYears, nullableString(res.Education), nullableString(res.Experience), nullableString(res.Skills), nullableString(res.About), nullableString(res.DesiredSalary), res.ReadyToRelocate, res.ReadyForTrips, res.IsActive, res.IsPublished, res.CreatedAt)

	created, err := scanResume(row)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update は履歴書を更新します。
func (r *ResumeRepository) Update(ctx context.Context, res *resume.Resume) (*resume.Resume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE resumes
           SET title = $1,
               full_name = $2,
               birth_date = $3,
               phone = $4,
               email = $5,
               location = $6,
               experience_years = $7,
               education = $8,
               experience = $9,
               skills = $10,
               about = $11,
               desired_salary = $12,
               ready_to_relocate = $13,
               ready_for_trips = $14,
               is_active = $15,
               is_published = $16,
               updated_at = $17
         WHERE id = $18
        RETURNING `+resumeColumns+`
    `, res.Title, res.FullName, res.BirthDate, nullableString(res.Phone), nullableString(res.Email), nullableString(res.Location), res.ExperienceYears, nullableString(res.Education), nullableString(res.Experience), nullableString(res.Skills), nullableString(res.About), nullableString(res.DesiredSalary), res.ReadyToRelocate, res.ReadyForTrips, res.IsActive, res.IsPublished, res.UpdatedAt, res.ID)

	updated, err := scanResume(row)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は履歴書を削除します。この履歴書を参照する応募の resume_id は
// 外部キーの ON DELETE SET NULL により NULL になります。
func (r *ResumeRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return resume.ErrResumeNotFound
	}
	return nil
}

// FindByID は ID で履歴書を取得します。
func (r *ResumeRepository) FindByID(ctx context.Context, id int64) (*resume.Resume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+resumeColumns+`
          FROM resumes
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanResume(row)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListByUser はユーザー自身の履歴書一覧を作成日時降順で取得します。
func (r *ResumeRepository) ListByUser(ctx context.Context, userID string) ([]*resume.Resume, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+resumeColumns+`
          FROM resumes
         WHERE user_id = $1
         ORDER BY created_at DESC, id DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resumes []*resume.Resume
	for rows.Next() {
		found, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, found)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return resumes, nil
}

func scanResume(row pgx.Row) (*resume.Resume, error) {
	var (
		id              int64
		userID          string
		title           string
		fullName        string
		birthDate       sql.NullTime
		phone           sql.NullString
		email           sql.NullString
		location        sql.NullString
		experienceYears sql.NullInt32
		education       sql.NullString
		experience      sql.NullString
		skills          sql.NullString
		about           sql.NullString
		desiredSalary   sql.NullString
		readyToRelocate bool
		readyForTrips   bool
		isActive        bool
		isPublished     bool
		createdAt       time.Time
		updatedAt       sql.NullTime
	)

	if err := row.Scan(&id, &userID, &title, &fullName, &birthDate, &phone, &email, &location, &experienceYears, &education, &experience, &skills, &about, &desiredSalary, &readyToRelocate, &readyForTrips, &isActive, &isPublished, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resume.ErrResumeNotFound
		}
		return nil, err
	}

	res := &resume.Resume{
		ID:              id,
		UserID:          userID,
		Title:           title,
		FullName:        fullName,
		Phone:           stringPtr(phone),
		Email:           stringPtr(email),
		Location:        stringPtr(location),
		Education:       stringPtr(education),
		Experience:      stringPtr(experience),
		Skills:          stringPtr(skills),
		About:           stringPtr(about),
		DesiredSalary:   stringPtr(desiredSalary),
		ReadyToRelocate: readyToRelocate,
		ReadyForTrips:   readyForTrips,
		IsActive:        isActive,
		IsPublished:     isPublished,
		CreatedAt:       createdAt,
	}
	if birthDate.Valid {
		value := birthDate.Time
		res.BirthDate = &value
	}
	if experienceYears.Valid {
		value := int(experienceYears.Int32)
		res.ExperienceYears = &value
	}
	if updatedAt.Valid {
		value := updatedAt.Time
		res.UpdatedAt = &value
	}

	return res, nil
}
