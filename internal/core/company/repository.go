package company

import "context"

// Repository は会社エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, company *Company) (*Company, error)
	Update(ctx context.Context, company *Company) (*Company, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Company, error)
	FindByName(ctx context.Context, name string) (*Company, error)
	List(ctx context.Context, filter ListCompaniesFilter) ([]*Company, string, error)
}

// MembershipRepository は会社メンバーシップの永続化を行うインターフェース
// です。
type MembershipRepository interface {
	Add(ctx context.Context, membership *Membership) (*Membership, error)
	UpdateRole(ctx context.Context, companyID int64, userID, role string) (*Membership, error)
	Remove(ctx context.Context, companyID int64, userID string) error
	Find(ctx context.Context, companyID int64, userID string) (*Membership, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*Membership, error)
}

// ListCompaniesFilter は一覧取得時の検索条件を表します。
type ListCompaniesFilter struct {
	Limit      int
	Offset     int
	Verified   *bool
	NameSearch string
}
