package company

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/agrokadry/agrojob-core/internal/core/access"
)

const (
	maxNameLength = 200
	maxRoleLength = 50

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

// Service は会社とメンバーシップに関するユースケースをまとめます。
type Service struct {
	repo    Repository
	members MembershipRepository
	clock   Clock
	tx      TransactionManager
}

// UseCase は会社ユースケースの公開インターフェースです。
type UseCase interface {
	CreateCompany(ctx context.Context, in CreateCompanyInput) (*Company, error)
	UpdateCompany(ctx context.Context, in UpdateCompanyInput) (*Company, error)
	SetVerified(ctx context.Context, in SetVerifiedInput) (*Company, error)
	DeleteCompany(ctx context.Context, in DeleteCompanyInput) error
	GetCompany(ctx context.Context, id int64) (*Company, error)
	ListCompanies(ctx context.Context, in ListCompaniesInput) (*ListCompaniesResult, error)
	ListCompaniesForUser(ctx context.Context, userID string) ([]*Company, error)
	AddMember(ctx context.Context, in AddMemberInput) (*Membership, error)
	ChangeMemberRole(ctx context.Context, in ChangeMemberRoleInput) (*Membership, error)
	RemoveMember(ctx context.Context, in RemoveMemberInput) error
	ListMembers(ctx context.Context, in ListMembersInput) ([]*Membership, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, members MembershipRepository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, members: members, clock: clock, tx: tx}
}

// CreateCompanyInput は会社作成時の入力です。作成者は同一トランザクション
// 内で Admin 役のメンバーとして登録されます。
type CreateCompanyInput struct {
	Name          string
	Description   *string
	ContactPerson *string
	ContactPhone  *string
	ContactEmail  *string
	CreatorID     string
}

// UpdateCompanyInput は会社更新時の入力です。
type UpdateCompanyInput struct {
	ID            int64
	Identity      access.Identity
	Name          *string
	Description   *string
	ContactPerson *string
	ContactPhone  *string
	ContactEmail  *string
}

// SetVerifiedInput は会社の認証フラグ更新入力です。プラットフォーム管理者
// のみ変更できます。
type SetVerifiedInput struct {
	ID       int64
	Identity access.Identity
	Verified bool
}

// DeleteCompanyInput は会社削除時の入力です。
type DeleteCompanyInput struct {
	ID       int64
	Identity access.Identity
}

// ListCompaniesInput は一覧取得時の入力です。
type ListCompaniesInput struct {
	PageSize   int
	PageToken  string
	Verified   *bool
	NameSearch string
}

// ListCompaniesResult は一覧取得結果を表します。
type ListCompaniesResult struct {
	Companies     []*Company
	NextPageToken string
}

// AddMemberInput はメンバー追加時の入力です。
type AddMemberInput struct {
	CompanyID int64
	Identity  access.Identity
	UserID    string
	Role      string
}

// ChangeMemberRoleInput はメンバーの役割変更入力です。
type ChangeMemberRoleInput struct {
	CompanyID int64
	Identity  access.Identity
	UserID    string
	NewRole   string
}

// RemoveMemberInput はメンバー削除時の入力です。
type RemoveMemberInput struct {
	CompanyID int64
	Identity  access.Identity
	UserID    string
}

// ListMembersInput はメンバー一覧取得時の入力です。
type ListMembersInput struct {
	CompanyID int64
	Identity  access.Identity
}

// CreateCompany は新しい会社を作成し、作成者を最初のメンバー (Admin) と
// して登録します。
func (s *Service) CreateCompany(ctx context.Context, in CreateCompanyInput) (*Company, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	creatorID := strings.TrimSpace(in.CreatorID)
	if creatorID == "" {
		return nil, ErrInvalidUserID
	}

	var created *Company
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureNameNotExists(txCtx, name); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Company{
			Name:          name,
			Description:   in.Description,
			ContactPerson: in.ContactPerson,
			ContactPhone:  in.ContactPhone,
			ContactEmail:  in.ContactEmail,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}

		if _, err := s.members.Add(txCtx, &Membership{
			CompanyID: result.ID,
			UserID:    creatorID,
			Role:      RoleAdmin,
			JoinedAt:  now,
		}); err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateCompany は会社情報を更新します。会社のメンバーまたはプラット
// フォーム管理者のみ実行できます。
func (s *Service) UpdateCompany(ctx context.Context, in UpdateCompanyInput) (*Company, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	var updated *Company
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authorizeMember(txCtx, in.Identity, in.ID); err != nil {
			return err
		}

		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			if !strings.EqualFold(name, existing.Name) {
				if err := s.ensureNameNotExists(txCtx, name); err != nil {
					return err
				}
			}
			existing.Name = name
		}
		if in.Description != nil {
			existing.Description = normalizeOptional(in.Description)
		}
		if in.ContactPerson != nil {
			existing.ContactPerson = normalizeOptional(in.ContactPerson)
		}
		if in.ContactPhone != nil {
			existing.ContactPhone = normalizeOptional(in.ContactPhone)
		}
		if in.ContactEmail != nil {
			existing.ContactEmail = normalizeOptional(in.ContactEmail)
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

// SetVerified は会社の認証フラグを変更します。
func (s *Service) SetVerified(ctx context.Context, in SetVerifiedInput) (*Company, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}
	if !in.Identity.Admin {
		return nil, access.ErrForbidden
	}

	var updated *Company
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		existing.IsVerified = in.Verified
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

// DeleteCompany は会社を削除します。求人が残っている会社は削除できません
// (ストレージ層の外部キー制約が ErrCompanyHasVacancies として通知され
// ます)。
func (s *Service) DeleteCompany(ctx context.Context, in DeleteCompanyInput) error {
	if in.ID <= 0 {
		return ErrInvalidID
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authorizeMember(txCtx, in.Identity, in.ID); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetCompany は ID で会社を取得します。
func (s *Service) GetCompany(ctx context.Context, id int64) (*Company, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	var found *Company
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListCompanies は会社の一覧を取得します。
func (s *Service) ListCompanies(ctx context.Context, in ListCompaniesInput) (*ListCompaniesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		companies []*Company
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListCompaniesFilter{
			Limit:      limit,
			Offset:     offset,
			Verified:   in.Verified,
			NameSearch: strings.TrimSpace(in.NameSearch),
		})
		if err != nil {
			return err
		}
		companies = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListCompaniesResult{Companies: companies, NextPageToken: nextToken}, nil
}

// ListCompaniesForUser はユーザーが所属する会社の一覧を取得します。
func (s *Service) ListCompaniesForUser(ctx context.Context, userID string) ([]*Company, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}

	var companies []*Company
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		memberships, err := s.members.ListByUser(txCtx, userID)
		if err != nil {
			return err
		}
		for _, m := range memberships {
			c, err := s.repo.FindByID(txCtx, m.CompanyID)
			if err != nil {
				return err
			}
			companies = append(companies, c)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return companies, nil
}

// AddMember は会社へメンバーを追加します。既存メンバーまたはプラット
// フォーム管理者のみ実行でき、同じユーザーを二重に追加することはできま
// せん。
func (s *Service) AddMember(ctx context.Context, in AddMemberInput) (*Membership, error) {
	if in.CompanyID <= 0 {
		return nil, ErrInvalidID
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}

	var added *Membership
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authorizeMember(txCtx, in.Identity, in.CompanyID); err != nil {
			return err
		}

		if _, err := s.repo.FindByID(txCtx, in.CompanyID); err != nil {
			return err
		}

		existing, err := s.members.Find(txCtx, in.CompanyID, userID)
		if err != nil && !errors.Is(err, ErrMemberNotFound) {
			return err
		}
		if existing != nil {
			return ErrMemberAlreadyExists
		}

		result, err := s.members.Add(txCtx, &Membership{
			CompanyID: in.CompanyID,
			UserID:    userID,
			Role:      role,
			JoinedAt:  s.clock.Now(),
		})
		if err != nil {
			return err
		}

		added = result
		return nil
	}); err != nil {
		return nil, err
	}

	return added, nil
}

// ChangeMemberRole はメンバーの役割を変更します。Admin 役のメンバーは
// 変更できません。会社から Admin がいなくなることを防ぎます。
func (s *Service) ChangeMemberRole(ctx context.Context, in ChangeMemberRoleInput) (*Membership, error) {
	if in.CompanyID <= 0 {
		return nil, ErrInvalidID
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	role, err := normalizeRole(in.NewRole)
	if err != nil {
		return nil, err
	}

	var updated *Membership
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authorizeMember(txCtx, in.Identity, in.CompanyID); err != nil {
			return err
		}

		current, err := s.members.Find(txCtx, in.CompanyID, userID)
		if err != nil {
			return err
		}
		if current.Role == RoleAdmin {
			return ErrAdminRoleProtected
		}

		result, err := s.members.UpdateRole(txCtx, in.CompanyID, userID, role)
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

// RemoveMember は会社からメンバーを外します。自分自身および Admin 役の
// メンバーは外せません。
func (s *Service) RemoveMember(ctx context.Context, in RemoveMemberInput) error {
	if in.CompanyID <= 0 {
		return ErrInvalidID
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return ErrInvalidUserID
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.authorizeMember(txCtx, in.Identity, in.CompanyID); err != nil {
			return err
		}

		if in.Identity.UserID == userID {
			return ErrCannotRemoveSelf
		}

		current, err := s.members.Find(txCtx, in.CompanyID, userID)
		if err != nil {
			return err
		}
		if current.Role == RoleAdmin {
			return ErrAdminRoleProtected
		}

		return s.members.Remove(txCtx, in.CompanyID, userID)
	})
}

// ListMembers は会社のメンバー一覧を取得します。
func (s *Service) ListMembers(ctx context.Context, in ListMembersInput) ([]*Membership, error) {
	if in.CompanyID <= 0 {
		return nil, ErrInvalidID
	}

	var members []*Membership
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.authorizeMember(txCtx, in.Identity, in.CompanyID); err != nil {
			return err
		}

		result, err := s.members.ListByCompany(txCtx, in.CompanyID)
		if err != nil {
			return err
		}
		members = result
		return nil
	}); err != nil {
		return nil, err
	}

	return members, nil
}

func (s *Service) authorizeMember(ctx context.Context, identity access.Identity, companyID int64) error {
	if identity.Admin {
		return nil
	}
	if identity.UserID == "" {
		return access.ErrForbidden
	}

	_, err := s.members.Find(ctx, companyID, identity.UserID)
	if errors.Is(err, ErrMemberNotFound) {
		return access.ErrForbidden
	}
	return err
}

func (s *Service) ensureNameNotExists(ctx context.Context, name string) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrCompanyNotFound) {
		return err
	}
	if existing != nil {
		return ErrNameAlreadyExists
	}
	return nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len([]rune(trimmed)) > maxNameLength {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeRole(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len([]rune(trimmed)) > maxRoleLength {
		return "", ErrInvalidRole
	}
	return trimmed, nil
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
