package application

import "time"

// Status は応募の選考状態を表します。
type Status string

const (
	// StatusPending は応募直後の初期状態です。
	StatusPending Status = "pending"
	// StatusViewed は雇用側が応募を閲覧した状態です。
	StatusViewed Status = "viewed"
	// StatusInvited は面接に招待された状態です。
	StatusInvited Status = "invited"
	// StatusAccepted は採用が確定した状態です。
	StatusAccepted Status = "accepted"
	// StatusRejected は不採用となった状態です。
	StatusRejected Status = "rejected"
	// StatusWithdrawn は応募者自身が取り下げた状態です。
	StatusWithdrawn Status = "withdrawn"
)

// IsValid は既知のステータスかどうかを返します。
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusViewed, StatusInvited, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// CanWithdraw は応募者による取り下げが許可される状態かどうかを返します。
// 取り下げは pending と viewed からのみ可能です。
func (s Status) CanWithdraw() bool {
	return s == StatusPending || s == StatusViewed
}

// AssignableByEmployer は雇用側の状態更新で指定できるステータスかどうかを
// 返します。現在の状態による遷移グラフの制限は課しません。
func (s Status) AssignableByEmployer() bool {
	switch s {
	case StatusViewed, StatusInvited, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

// Application は求人への応募エンティティです。VacancyID と UserID は作成後
// 不変で、同一の (VacancyID, UserID) の組に対する応募は高々ひとつです。
type Application struct {
	ID              int64
	VacancyID       int64
	UserID          string
	ResumeID        *int64
	Status          Status
	CoverLetter     *string
	EmployerComment *string
	AppliedAt       time.Time
	StatusUpdatedAt *time.Time
}
