package access

import (
	"context"
	"errors"
)

var (
	// ErrForbidden は操作権限がない場合に返却されます。
	ErrForbidden = errors.New("access: forbidden")
	// ErrVacancyNotFound は対象の求人が存在しない場合に返却されます。
	ErrVacancyNotFound = errors.New("access: vacancy not found")
)

// Identity はリクエスト元の身元です。UserID は上位の認証基盤が発行する
// 不透明な識別子で、Admin はプラットフォーム全体の管理者権限を示します。
type Identity struct {
	UserID string
	Admin  bool
}

// VacancyRef は認可判定に必要な求人の最小情報です。
type VacancyRef struct {
	ID        int64
	CompanyID int64
	CreatedBy *string
	IsActive  bool
}

// VacancyDirectory は求人参照の抽象です。
type VacancyDirectory interface {
	FindRef(ctx context.Context, vacancyID int64) (*VacancyRef, error)
}

// MembershipDirectory は会社メンバーシップ参照の抽象です。
type MembershipDirectory interface {
	IsMember(ctx context.Context, userID string, companyID int64) (bool, error)
}

// Service は求人とその応募に対する管理権限の判定を行います。
type Service struct {
	vacancies VacancyDirectory
	members   MembershipDirectory
}

// NewService は Service を生成します。
func NewService(vacancies VacancyDirectory, members MembershipDirectory) *Service {
	return &Service{vacancies: vacancies, members: members}
}

// CanManageVacancy は identity が指定求人の応募を閲覧・管理できるか判定
// します。求人の作成者、求人を所有する会社のメンバー (役割は問わない)、
// またはプラットフォーム管理者のいずれかであれば許可されます。
func (s *Service) CanManageVacancy(ctx context.Context, identity Identity, vacancyID int64) error {
	if identity.Admin {
		return nil
	}
	if identity.UserID == "" {
		return ErrForbidden
	}

	ref, err := s.vacancies.FindRef(ctx, vacancyID)
	if err != nil {
		return err
	}

	if ref.CreatedBy != nil && *ref.CreatedBy == identity.UserID {
		return nil
	}

	isMember, err := s.members.IsMember(ctx, identity.UserID, ref.CompanyID)
	if err != nil {
		return err
	}
	if isMember {
		return nil
	}

	return ErrForbidden
}

// CanManageCompany は identity が会社のメンバーまたはプラットフォーム
// 管理者かどうかを判定します。役割は問いません。
func (s *Service) CanManageCompany(ctx context.Context, identity Identity, companyID int64) error {
	if identity.Admin {
		return nil
	}
	if identity.UserID == "" {
		return ErrForbidden
	}

	isMember, err := s.members.IsMember(ctx, identity.UserID, companyID)
	if err != nil {
		return err
	}
	if isMember {
		return nil
	}

	return ErrForbidden
}
