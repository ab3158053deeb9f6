package resume

import (
	"context"
	"strings"
	"time"

	"github.com/agrokadry/agrojob-core/internal/core/access"
)

const (
	maxTitleLength    = 200
	maxTextLength     = 1000
	maxSalaryLength   = 100
	maxLocationLength = 200
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は履歴書に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は履歴書ユースケースの公開インターフェースです。
type UseCase interface {
	CreateResume(ctx context.Context, in CreateResumeInput) (*Resume, error)
	UpdateResume(ctx context.Context, in UpdateResumeInput) (*Resume, error)
	DeleteResume(ctx context.Context, in DeleteResumeInput) error
	GetResume(ctx context.Context, in GetResumeInput) (*Resume, error)
	ListResumes(ctx context.Context, userID string) ([]*Resume, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateResumeInput は履歴書作成時の入力です。
type CreateResumeInput struct {
	UserID          string
	Title           string
	FullName        string
	BirthDate       *time.Time
	Phone           *string
	Email           *string
	Location        *string
	ExperienceYears *int
	Education       *string
	Experience      *string
	Skills          *string
	About           *string
	DesiredSalary   *string
	ReadyToRelocate bool
	ReadyForTrips   bool
	IsPublished     bool
}

// UpdateResumeInput は履歴書更新時の入力です。IsActive と IsPublished は
// 個別に切り替えられます。
type UpdateResumeInput struct {
	ID              int64
	UserID          string
	Title           *string
	FullName        *string
	Phone           *string
	Email           *string
	Location        *string
	ExperienceYears *int
	Education       *string
	Experience      *string
	Skills          *string
	About           *string
	DesiredSalary   *string
	ReadyToRelocate *bool
	ReadyForTrips   *bool
	IsActive        *bool
	IsPublished     *bool
}

// DeleteResumeInput は履歴書削除時の入力です。
type DeleteResumeInput struct {
	ID     int64
	UserID string
}

// GetResumeInput は履歴書取得時の入力です。
type GetResumeInput struct {
	ID       int64
	Identity access.Identity
}

// CreateResume は新しい履歴書を作成します。作成直後は IsActive=true で、
// 公開するかどうかは入力で指定します。
func (s *Service) CreateResume(ctx context.Context, in CreateResumeInput) (*Resume, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	title, err := normalizeRequired(in.Title, maxTitleLength, ErrInvalidTitle)
	if err != nil {
		return nil, err
	}
	fullName, err := normalizeRequired(in.FullName, maxTitleLength, ErrInvalidFullName)
	if err != nil {
		return nil, err
	}

	texts := []*string{in.Education, in.Experience, in.Skills, in.About}
	for _, text := range texts {
		if err := checkTextLength(text); err != nil {
			return nil, err
		}
	}

	var created *Resume
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, &Resume{
			UserID:          userID,
			Title:           title,
			FullName:        fullName,
			BirthDate:       in.BirthDate,
			Phone:           normalizeOptional(in.Phone),
			Email:           normalizeOptional(in.Email),
			Location:        normalizeOptional(in.Location),
			ExperienceYears: in.ExperienceYears,
			Education:       normalizeOptional(in.Education),
			Experience:      normalizeOptional(in.Experience),
			Skills:          normalizeOptional(in.Skills),
			About:           normalizeOptional(in.About),
			DesiredSalary:   normalizeOptional(in.DesiredSalary),
			ReadyToRelocate: in.ReadyToRelocate,
			ReadyForTrips:   in.ReadyForTrips,
			IsActive:        true,
			IsPublished:     in.IsPublished,
			CreatedAt:       s.clock.Now(),
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateResume は履歴書を更新します。所有者のみ実行できます。
func (s *Service) UpdateResume(ctx context.Context, in UpdateResumeInput) (*Resume, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, ErrInvalidUserID
	}

	var updated *Resume
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		if existing.UserID != in.UserID {
			return access.ErrForbidden
		}

		if in.Title != nil {
			title, err := normalizeRequired(*in.Title, maxTitleLength, ErrInvalidTitle)
			if err != nil {
				return err
			}
			existing.Title = title
		}
		if in.FullName != nil {
			fullName, err := normalizeRequired(*in.FullName, maxTitleLength, ErrInvalidFullName)
			if err != nil {
				return err
			}
			existing.FullName = fullName
		}
		if in.Phone != nil {
			existing.Phone = normalizeOptional(in.Phone)
		}
		if in.Email != nil {
			existing.Email = normalizeOptional(in.Email)
		}
		if in.Location != nil {
			existing.Location = normalizeOptional(in.Location)
		}
		if in.ExperienceYears != nil {
			existing.ExperienceYears = in.ExperienceYears
		}
		for _, pair := range []struct {
			src *string
			dst **string
		}{
			{in.Education, &existing.Education},
			{in.Experience, &existing.Experience},
			{in.Skills, &existing.Skills},
			{in.About, &existing.About},
		} {
			if pair.src == nil {
				continue
			}
			if err := checkTextLength(pair.src); err != nil {
				return err
			}
			*pair.dst = normalizeOptional(pair.src)
		}
		if in.DesiredSalary != nil {
			existing.DesiredSalary = normalizeOptional(in.DesiredSalary)
		}
		if in.ReadyToRelocate != nil {
			existing.ReadyToRelocate = *in.ReadyToRelocate
		}
		if in.ReadyForTrips != nil {
			existing.ReadyForTrips = *in.ReadyForTrips
		}
		if in.IsActive != nil {
			existing.IsActive = *in.IsActive
		}
		if in.IsPublished != nil {
			existing.IsPublished = *in.IsPublished
		}

		now := s.clock.Now()
		existing.UpdatedAt = &now

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteResume は履歴書を削除します。この履歴書を参照している応募は削除
// されず、参照が NULL になります。
func (s *Service) DeleteResume(ctx context.Context, in DeleteResumeInput) error {
	if in.ID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(in.UserID) == "" {
		return ErrInvalidUserID
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		if existing.UserID != in.UserID {
			return access.ErrForbidden
		}
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetResume は ID で履歴書を取得します。所有者とプラットフォーム管理者は
// 常に、それ以外は公開中かつ有効な履歴書のみ閲覧できます。
func (s *Service) GetResume(ctx context.Context, in GetResumeInput) (*Resume, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	var found *Resume
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		isOwner := in.Identity.UserID != "" && result.UserID == in.Identity.UserID
		if !isOwner && !in.Identity.Admin && !result.Visible() {
			return ErrResumeNotFound
		}

		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListResumes はユーザー自身の履歴書一覧を取得します。
func (s *Service) ListResumes(ctx context.Context, userID string) ([]*Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}

	var resumes []*Resume
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByUser(txCtx, userID)
		if err != nil {
			return err
		}
		resumes = result
		return nil
	}); err != nil {
		return nil, err
	}

	return resumes, nil
}

func normalizeRequired(raw string, maxLen int, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len([]rune(trimmed)) > maxLen {
		return "", invalid
	}
	return trimmed, nil
}

func checkTextLength(raw *string) error {
	if raw == nil {
		return nil
	}
	if len([]rune(strings.TrimSpace(*raw))) > maxTextLength {
		return ErrTextTooLong
	}
	return nil
}

func normalizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	value := trimmed
	return &value
}
