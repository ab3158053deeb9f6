package application

import (
	"context"
	"time"
)

// Repository は応募エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, app *Application) (*Application, error)
	FindByID(ctx context.Context, id int64) (*Application, error)
	// UpdateStatus はステータスと更新時刻を書き込みます。comment が nil の
	// 場合、既存の雇用側コメントは変更しません。
	UpdateStatus(ctx context.Context, id int64, status Status, comment *string, statusUpdatedAt time.Time) (*Application, error)
	HasApplied(ctx context.Context, vacancyID int64, userID string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*Application, string, error)
	CountByUser(ctx context.Context, userID string, status *Status) (int, error)
	CountByVacancy(ctx context.Context, vacancyID int64) (int, error)
	CountByCompany(ctx context.Context, companyID int64) (int, error)
}

// ListFilter は一覧取得時の検索条件を表します。UserID、VacancyID、
// CompanyID はいずれかひとつを指定します。
type ListFilter struct {
	UserID    *string
	VacancyID *int64
	CompanyID *int64
	Status    *Status
	Limit     int
	Offset    int
}
