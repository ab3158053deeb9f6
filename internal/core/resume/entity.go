package resume

import "time"

// Resume は求職者の履歴書エンティティです。IsActive と IsPublished は
// 独立に切り替えられます (公開済みだが休止中、といった状態を許す)。
type Resume struct {
	ID              int64
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
	IsActive        bool
	IsPublished     bool
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Visible は他のユーザーから閲覧可能かどうかを返します。
func (r *Resume) Visible() bool {
	return r.IsActive && r.IsPublished
}
