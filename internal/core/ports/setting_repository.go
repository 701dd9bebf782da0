package ports

import (
	"context"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// SettingRepository persists keyed settings. Keys are unique.
type SettingRepository interface {
	Upsert(ctx context.Context, s *domain.Setting) (*domain.Setting, error)
	FindByKey(ctx context.Context, key string) (*domain.Setting, error)
	List(ctx context.Context, category string) ([]*domain.Setting, error)
	ListPublic(ctx context.Context, keys []string) ([]*domain.Setting, error)
	Delete(ctx context.Context, key string) error
}
