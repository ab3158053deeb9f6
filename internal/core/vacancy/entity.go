package vacancy

import "time"

// Vacancy は求人エンティティです。会社に帰属し、作成者のアカウントが
// 削除されても求人は残ります (CreatedBy は NULL になる)。
type Vacancy struct {
	ID          int64
	CompanyID   int64
	CreatedBy   *string
	Title       string
	Description string
	Salary      string
	Category    string
	Location    string
	IsSeasonal  bool
	IsActive    bool
	ViewsCount  int
	PostedAt    time.Time
	UpdatedAt   time.Time

	// Requirements と Offers は編集のたびに全削除・再挿入で置き換え
	// られる付随レコードです。
	Requirements []string
	Offers       []string
}
