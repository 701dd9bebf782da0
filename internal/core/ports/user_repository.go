package ports

import (
	"context"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts. Email is unique.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindManyByID(ctx context.Context, ids []string) (map[string]*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	List(ctx context.Context, role string, page, limit int) ([]*domain.User, int64, error)
	Delete(ctx context.Context, id string) error
}
