package vacancy

import "context"

// Repository は求人エンティティの永続化を行うインターフェースです。
// Create と Update は Requirements / Offers の付随レコードも書き込み、
// Update は既存の付随レコードを全削除してから再挿入します。
type Repository interface {
	Create(ctx context.Context, vacancy *Vacancy) (*Vacancy, error)
	Update(ctx context.Context, vacancy *Vacancy) (*Vacancy, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Vacancy, error)
	List(ctx context.Context, filter ListVacanciesFilter) ([]*Vacancy, string, error)
	IncrementViews(ctx context.Context, id int64) error
}

// ListVacanciesFilter は一覧取得時の検索条件を表します。
type ListVacanciesFilter struct {
	CompanyID *int64
	Active    *bool
	Category  string
	Limit     int
	Offset    int
}
