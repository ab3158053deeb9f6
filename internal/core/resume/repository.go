package resume

import "context"

// Repository は履歴書エンティティの永続化を行うインターフェースです。
// Delete は履歴書を参照する応募の resume_id を NULL にします (応募自体は
// 削除されません)。
type Repository interface {
	Create(ctx context.Context, resume *Resume) (*Resume, error)
	Update(ctx context.Context, resume *Resume) (*Resume, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Resume, error)
	ListByUser(ctx context.Context, userID string) ([]*Resume, error)
}
