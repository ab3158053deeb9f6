package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/agrokadry/agrojob-core/internal/core/access"
)

const (
	maxCoverLetterLength     = 2000
	maxEmployerCommentLength = 1000

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

// TransactionManager はトランザクション制御の抽象化です。各操作は前提条件の
// 検証と状態の書き込みをひとつのトランザクション内で行います。
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

// ResumeSnapshot は応募時の前提条件検証に必要な履歴書の最小情報です。
type ResumeSnapshot struct {
	ID     int64
	UserID string
}

// ResumeDirectory は履歴書参照の抽象です。
type ResumeDirectory interface {
	Snapshot(ctx context.Context, resumeID int64) (*ResumeSnapshot, error)
}

// Notifier はステータス変更の外部通知ポートです。通知の失敗は応募の
// トランザクションに影響してはなりません。実装側で吸収します。
type Notifier interface {
	StatusChanged(ctx context.Context, app *Application)
}

type noopNotifier struct{}

func (noopNotifier) StatusChanged(context.Context, *Application) {}

// Service は応募ワークフローのユースケースをまとめます。
type Service struct {
	repo      Repository
	vacancies access.VacancyDirectory
	resumes   ResumeDirectory
	authz     Authorizer
	notifier  Notifier
	clock     Clock
	tx        TransactionManager
}

// UseCase は応募ユースケースの公開インターフェースです。
type UseCase interface {
	Submit(ctx context.Context, in SubmitInput) (*Application, error)
	Withdraw(ctx context.Context, in WithdrawInput) (*Application, error)
	UpdateStatus(ctx context.Context, in UpdateStatusInput) (*Application, error)
	ViewDetail(ctx context.Context, in ViewDetailInput) (*Application, error)
	GetForApplicant(ctx context.Context, in GetForApplicantInput) (*Application, error)
	ListApplications(ctx context.Context, in ListApplicationsInput) (*ListApplicationsResult, error)
	CountByUser(ctx context.Context, userID string, status *Status) (int, error)
	CountByVacancy(ctx context.Context, identity access.Identity, vacancyID int64) (int, error)
	CountByCompany(ctx context.Context, identity access.Identity, companyID int64) (int, error)
	HasApplied(ctx context.Context, vacancyID int64, userID string) (bool, error)
}

// NewService は Service を生成します。notifier、clock、tx は nil の場合に
// 無効化された既定実装へ差し替えられます。
func NewService(repo Repository, vacancies access.VacancyDirectory, resumes ResumeDirectory, authz Authorizer, notifier Notifier, clock Clock, tx TransactionManager) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{
		repo:      repo,
		vacancies: vacancies,
		resumes:   resumes,
		authz:     authz,
		notifier:  notifier,
		clock:     clock,
		tx:        tx,
	}
}

// SubmitInput は応募作成時の入力です。
type SubmitInput struct {
	VacancyID   int64
	UserID      string
	ResumeID    *int64
	CoverLetter *string
}

// WithdrawInput は応募取り下げ時の入力です。
type WithdrawInput struct {
	ApplicationID int64
	UserID        string
}

// UpdateStatusInput は雇用側のステータス更新入力です。
type UpdateStatusInput struct {
	ApplicationID   int64
	Identity        access.Identity
	Status          Status
	EmployerComment *string
}

// ViewDetailInput は雇用側の応募詳細取得入力です。
type ViewDetailInput struct {
	ApplicationID int64
	Identity      access.Identity
}

// GetForApplicantInput は応募者自身の応募取得入力です。
type GetForApplicantInput struct {
	ApplicationID int64
	UserID        string
}

// ListApplicationsInput は一覧取得時の入力です。UserID を指定した場合は
// 本人確認のみ、VacancyID / CompanyID を指定した場合は求人管理権限が
// 必要です。
type ListApplicationsInput struct {
	Identity  access.Identity
	UserID    *string
	VacancyID *int64
	CompanyID *int64
	Status    *Status
	PageSize  int
	PageToken string
}

// ListApplicationsResult は一覧取得結果を表します。
type ListApplicationsResult struct {
	Applications  []*Application
	NextPageToken string
}

// Submit は応募を作成します。対象の求人が募集中であること、履歴書が応募者
// 本人のものであること、同じ求人へ未応募であることを検証します。重複応募は
// 取り下げ済みであっても拒否されます。
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Application, error) {
	if in.VacancyID <= 0 {
		return nil, ErrInvalidVacancyID
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	coverLetter, err := normalizeText(in.CoverLetter, maxCoverLetterLength, ErrCoverLetterTooLong)
	if err != nil {
		return nil, err
	}

	var created *Application
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		ref, err := s.vacancies.FindRef(txCtx, in.VacancyID)
		if err != nil {
			if errors.Is(err, access.ErrVacancyNotFound) {
				return ErrVacancyNotFound
			}
			return err
		}
		if !ref.IsActive {
			return ErrVacancyInactive
		}

		if in.ResumeID != nil {
			snapshot, err := s.resumes.Snapshot(txCtx, *in.ResumeID)
			if err != nil {
				return err
			}
			if snapshot.UserID != userID {
				return ErrResumeNotFound
			}
		}

		// 事前チェックで分かりやすいエラーを返す。同時送信の競合は
		// (vacancy_id, user_id) の一意制約が最終的に防ぐ。
		applied, err := s.repo.HasApplied(txCtx, in.VacancyID, userID)
		if err != nil {
			return err
		}
		if applied {
			return ErrAlreadyApplied
		}

		app := &Application{
			VacancyID:   in.VacancyID,
			UserID:      userID,
			ResumeID:    in.ResumeID,
			Status:      StatusPending,
			CoverLetter: coverLetter,
			AppliedAt:   s.clock.Now(),
		}

		result, err := s.repo.Create(txCtx, app)
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

// Withdraw は応募者本人による取り下げです。pending または viewed の応募
// のみ取り下げられます。雇用側コメントは変更しません。
func (s *Service) Withdraw(ctx context.Context, in WithdrawInput) (*Application, error) {
	if in.ApplicationID <= 0 {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, ErrInvalidUserID
	}

	var withdrawn *Application
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		app, err := s.repo.FindByID(txCtx, in.ApplicationID)
		if err != nil {
			return err
		}
		if app.UserID != in.UserID {
			return access.ErrForbidden
		}
		if !app.Status.CanWithdraw() {
			return ErrInvalidTransition
		}

		result, err := s.repo.UpdateStatus(txCtx, app.ID, StatusWithdrawn, nil, s.clock.Now())
		if err != nil {
			return err
		}

		withdrawn = result
		return nil
	}); err != nil {
		return nil, err
	}

	return withdrawn, nil
}

// UpdateStatus は雇用側によるステータス更新です。指定できるのは viewed、
// invited、accepted、rejected のいずれかで、現在の状態による遷移制限は
// 設けていません。コメントが指定された場合は置き換えます。
func (s *Service) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*Application, error) {
	if in.ApplicationID <= 0 {
		return nil, ErrInvalidID
	}
	if !in.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if !in.Status.AssignableByEmployer() {
		return nil, ErrStatusNotAssignable
	}
	comment, err := normalizeText(in.EmployerComment, maxEmployerCommentLength, ErrCommentTooLong)
	if err != nil {
		return nil, err
	}

	var updated *Application
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		app, err := s.repo.FindByID(txCtx, in.ApplicationID)
		if err != nil {
			return err
		}
		if err := s.authz.CanManageVacancy(txCtx, in.Identity, app.VacancyID); err != nil {
			return err
		}

		result, err := s.repo.UpdateStatus(txCtx, app.ID, in.Status, comment, s.clock.Now())
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	// 通知はコミット後に呼び出す。配送失敗は実装側で吸収される。
	s.notifier.StatusChanged(ctx, updated)

	return updated, nil
}

// ViewDetail は雇用側の応募詳細取得です。pending の応募は取得と同時に
// viewed へ遷移します。再取得時は状態を変更しません。
func (s *Service) ViewDetail(ctx context.Context, in ViewDetailInput) (*Application, error) {
	if in.ApplicationID <= 0 {
		return nil, ErrInvalidID
	}

	var detail *Application
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		app, err := s.repo.FindByID(txCtx, in.ApplicationID)
		if err != nil {
			return err
		}
		if err := s.authz.CanManageVacancy(txCtx, in.Identity, app.VacancyID); err != nil {
			return err
		}

		if app.Status == StatusPending {
			app, err = s.repo.UpdateStatus(txCtx, app.ID, StatusViewed, nil, s.clock.Now())
			if err != nil {
				return err
			}
		}

		detail = app
		return nil
	}); err != nil {
		return nil, err
	}

	return detail, nil
}

// GetForApplicant は応募者自身の応募を取得します。状態は変更しません。
func (s *Service) GetForApplicant(ctx context.Context, in GetForApplicantInput) (*Application, error) {
	if in.ApplicationID <= 0 {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, ErrInvalidUserID
	}

	var app *Application
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ApplicationID)
		if err != nil {
			return err
		}
		if found.UserID != in.UserID {
			return access.ErrForbidden
		}
		app = found
		return nil
	}); err != nil {
		return nil, err
	}

	return app, nil
}

// ListApplications は応募の一覧を applied_at 降順で取得します。
func (s *Service) ListApplications(ctx context.Context, in ListApplicationsInput) (*ListApplicationsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	switch {
	case in.UserID != nil:
		if in.Identity.UserID != *in.UserID && !in.Identity.Admin {
			return nil, access.ErrForbidden
		}
	case in.VacancyID != nil:
	case in.CompanyID != nil:
	default:
		return nil, ErrInvalidID
	}

	var (
		apps      []*Application
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if in.VacancyID != nil {
			if err := s.authz.CanManageVacancy(txCtx, in.Identity, *in.VacancyID); err != nil {
				return err
			}
		}
		if in.CompanyID != nil {
			if err := s.authz.CanManageCompany(txCtx, in.Identity, *in.CompanyID); err != nil {
				return err
			}
		}

		result, token, err := s.repo.List(txCtx, ListFilter{
			UserID:    in.UserID,
			VacancyID: in.VacancyID,
			CompanyID: in.CompanyID,
			Status:    in.Status,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			return err
		}
		apps = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListApplicationsResult{Applications: apps, NextPageToken: nextToken}, nil
}

// CountByUser はユーザーの応募件数を返します。status でフィルタできます。
func (s *Service) CountByUser(ctx context.Context, userID string, status *Status) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrInvalidUserID
	}
	if status != nil && !status.IsValid() {
		return 0, ErrInvalidStatus
	}

	var count int
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.CountByUser(txCtx, userID, status)
		if err != nil {
			return err
		}
		count = result
		return nil
	}); err != nil {
		return 0, err
	}

	return count, nil
}

// CountByVacancy は求人への応募件数を返します。求人管理権限が必要です。
func (s *Service) CountByVacancy(ctx context.Context, identity access.Identity, vacancyID int64) (int, error) {
	if vacancyID <= 0 {
		return 0, ErrInvalidVacancyID
	}

	var count int
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.authz.CanManageVacancy(txCtx, identity, vacancyID); err != nil {
			return err
		}
		result, err := s.repo.CountByVacancy(txCtx, vacancyID)
		if err != nil {
			return err
		}
		count = result
		return nil
	}); err != nil {
		return 0, err
	}

	return count, nil
}

// CountByCompany は会社の全求人を横断した応募件数を返します。会社の
// メンバーまたは管理者のみ取得できます。
func (s *Service) CountByCompany(ctx context.Context, identity access.Identity, companyID int64) (int, error) {
	if companyID <= 0 {
		return 0, ErrInvalidID
	}

	var count int
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.authz.CanManageCompany(txCtx, identity, companyID); err != nil {
			return err
		}
		result, err := s.repo.CountByCompany(txCtx, companyID)
		if err != nil {
			return err
		}
		count = result
		return nil
	}); err != nil {
		return 0, err
	}

	return count, nil
}

// HasApplied はユーザーが求人へ応募済みかどうかを返します。重複応募を
// 一意制約に頼らず事前に知らせるための存在チェックです。
func (s *Service) HasApplied(ctx context.Context, vacancyID int64, userID string) (bool, error) {
	if vacancyID <= 0 {
		return false, ErrInvalidVacancyID
	}
	if strings.TrimSpace(userID) == "" {
		return false, ErrInvalidUserID
	}

	var applied bool
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.HasApplied(txCtx, vacancyID, userID)
		if err != nil {
			return err
		}
		applied = result
		return nil
	}); err != nil {
		return false, err
	}

	return applied, nil
}

func normalizeText(raw *string, maxLen int, tooLong error) (*string, error) {
	if raw == nil {
		return nil, nil
	}

	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > maxLen {
		return nil, tooLong
	}

	text := trimmed
	return &text, nil
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
