package vacancy

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/agrokadry/agrojob-core/internal/core/access"
)

const (
	maxTitleLength    = 200
	maxSalaryLength   = 100
	maxCategoryLength = 100
	maxLocationLength = 200

	defaultListPageSize = 50
	maxListPageSize     = 200
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

// Authorizer は求人・会社に対する管理権限の判定を行う抽象です。
type Authorizer interface {
	CanManageVacancy(ctx context.Context, identity access.Identity, vacancyID int64) error
	CanManageCompany(ctx context.Context, identity access.Identity, companyID int64) error
}

// Service は求人に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	authz Authorizer
	clock Clock
	tx    TransactionManager
}

// UseCase は求人ユースケースの公開インターフェースです。
type UseCase interface {
	CreateVacancy(ctx context.Context, in CreateVacancyInput) (*Vacancy, error)
	UpdateVacancy(ctx context.Context, in UpdateVacancyInput) (*Vacancy, error)
	SetActive(ctx context.Context, in SetActiveInput) (*Vacancy, error)
	DeleteVacancy(ctx context.Context, in DeleteVacancyInput) error
	GetVacancy(ctx context.Context, in GetVacancyInput) (*Vacancy, error)
	ListVacancies(ctx context.Context, in ListVacanciesInput) (*ListVacanciesResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, authz Authorizer, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, authz: authz, clock: clock, tx: tx}
}

// CreateVacancyInput は求人作成時の入力です。
type CreateVacancyInput struct {
	CompanyID    int64
	Identity     access.Identity
	Title        string
	Description  string
	Salary       string
	Category     string
	Location     string
	IsSeasonal   bool
	Requirements []string
	Offers       []string
}

// UpdateVacancyInput は求人更新時の入力です。Requirements / Offers は
// 指定された場合に全置き換えされます。
type UpdateVacancyInput struct {
	ID           int64
	Identity     access.Identity
	Title        *string
	Description  *string
	Salary       *string
	Category     *string
	Location     *string
	IsSeasonal   *bool
	Requirements []string
	Offers       []string
}

// SetActiveInput は求人の募集中フラグ更新入力です。
type SetActiveInput struct {
	ID       int64
	Identity access.Identity
	Active   bool
}

// DeleteVacancyInput は求人削除時の入力です。
type DeleteVacancyInput struct {
	ID       int64
	Identity access.Identity
}

// GetVacancyInput は求人取得時の入力です。CountView を指定すると閲覧数を
// 加算します (公開側の詳細表示用)。
type GetVacancyInput struct {
	ID        int64
	CountView bool
}

// ListVacanciesInput は一覧取得時の入力です。
type ListVacanciesInput struct {
	CompanyID *int64
	Active    *bool
	Category  string
	PageSize  int
	PageToken string
}

// ListVacanciesResult は一覧取得結果を表します。
type ListVacanciesResult struct {
	Vacancies     []*Vacancy
	NextPageToken string
}

// CreateVacancy は新しい求人を作成します。会社のメンバーまたはプラット
// フォーム管理者のみ作成でき、作成者が CreatedBy として記録されます。
func (s *Service) CreateVacancy(ctx context.Context, in CreateVacancyInput) (*Vacancy, error) {
	if in.CompanyID <= 0 {
		return nil, ErrInvalidCompanyID
	}
	title, err := normalizeRequired(in.Title, maxTitleLength, ErrInvalidTitle)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, ErrInvalidDescription
	}
	salary, err := normalizeBounded(in.Salary, maxSalaryLength, ErrInvalidSalary)
	if err != nil {
		return nil, err
	}
	category, err := normalizeBounded(in.Category, maxCategoryLength, ErrInvalidCategory)
	if err != nil {
		return nil, err
	}
	location, err := normalizeBounded(in.Location, maxLocationLength, ErrInvalidLocation)
	if err != nil {
		return nil, err
	}

	var created *Vacancy
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authz.CanManageCompany(txCtx, in.Identity, in.CompanyID); err != nil {
			return err
		}

		now := s.clock.Now()
		var createdBy *string
		if in.Identity.UserID != "" {
			userID := in.Identity.UserID
			createdBy = &userID
		}

		result, err := s.repo.Create(txCtx, &Vacancy{
			CompanyID:    in.CompanyID,
			CreatedBy:    createdBy,
			Title:        title,
			Description:  description,
			Salary:       salary,
			Category:     category,
			Location:     location,
			IsSeasonal:   in.IsSeasonal,
			IsActive:     true,
			PostedAt:     now,
			UpdatedAt:    now,
			Requirements: normalizeLines(in.Requirements),
			Offers:       normalizeLines(in.Offers),
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

// UpdateVacancy は求人情報を更新します。
func (s *Service) UpdateVacancy(ctx context.Context, in UpdateVacancyInput) (*Vacancy, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	var updated *Vacancy
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authz.CanManageVacancy(txCtx, in.Identity, in.ID); err != nil {
			return err
		}

		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Title != nil {
			title, err := normalizeRequired(*in.Title, maxTitleLength, ErrInvalidTitle)
			if err != nil {
				return err
			}
			existing.Title = title
		}
		if in.Description != nil {
			description := strings.TrimSpace(*in.Description)
			if description == "" {
				return ErrInvalidDescription
			}
			existing.Description = description
		}
		if in.Salary != nil {
			salary, err := normalizeBounded(*in.Salary, maxSalaryLength, ErrInvalidSalary)
			if err != nil {
				return err
			}
			existing.Salary = salary
		}
		if in.Category != nil {
			category, err := normalizeBounded(*in.Category, maxCategoryLength, ErrInvalidCategory)
			if err != nil {
				return err
			}
			existing.Category = category
		}
		if in.Location != nil {
			location, err := normalizeBounded(*in.Location, maxLocationLength, ErrInvalidLocation)
			if err != nil {
				return err
			}
			existing.Location = location
		}
		if in.IsSeasonal != nil {
			existing.IsSeasonal = *in.IsSeasonal
		}
		if in.Requirements != nil {
			existing.Requirements = normalizeLines(in.Requirements)
		}
		if in.Offers != nil {
			existing.Offers = normalizeLines(in.Offers)
		}
		existing.UpdatedAt = s.clock.Now()

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

// SetActive は求人の募集中フラグを切り替えます。募集終了は取り下げ状態
// ではなくこのフラグで表現されます。
func (s *Service) SetActive(ctx context.Context, in SetActiveInput) (*Vacancy, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	var updated *Vacancy
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authz.CanManageVacancy(txCtx, in.Identity, in.ID); err != nil {
			return err
		}

		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		existing.IsActive = in.Active
		existing.UpdatedAt = s.clock.Now()

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

// DeleteVacancy は求人を削除します。応募が存在する求人は削除できません
// (外部キー制約が ErrVacancyHasApplications として通知されます)。
func (s *Service) DeleteVacancy(ctx context.Context, in DeleteVacancyInput) error {
	if in.ID <= 0 {
		return ErrInvalidID
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authz.CanManageVacancy(txCtx, in.Identity, in.ID); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetVacancy は ID で求人を取得します。
func (s *Service) GetVacancy(ctx context.Context, in GetVacancyInput) (*Vacancy, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	var found *Vacancy
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.CountView {
			if err := s.repo.IncrementViews(txCtx, in.ID); err != nil {
				return err
			}
			result.ViewsCount++
		}

		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListVacancies は求人の一覧を取得します。
func (s *Service) ListVacancies(ctx context.Context, in ListVacanciesInput) (*ListVacanciesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		vacancies []*Vacancy
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListVacanciesFilter{
			CompanyID: in.CompanyID,
			Active:    in.Active,
			Category:  strings.TrimSpace(in.Category),
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			return err
		}
		vacancies = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListVacanciesResult{Vacancies: vacancies, NextPageToken: nextToken}, nil
}

func normalizeRequired(raw string, maxLen int, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len([]rune(trimmed)) > maxLen {
		return "", invalid
	}
	return trimmed, nil
}

func normalizeBounded(raw string, maxLen int, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if len([]rune(trimmed)) > maxLen {
		return "", invalid
	}
	return trimmed, nil
}

func normalizeLines(lines []string) []string {
	if lines == nil {
		return nil
	}
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
