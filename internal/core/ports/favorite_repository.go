package ports

import (
	"context"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// FavoriteRepository persists favorites; (user, pet) is unique and Create
// reports domain.ErrFavoriteExists on a duplicate.
type FavoriteRepository interface {
	Create(ctx context.Context, fav *domain.Favorite) (*domain.Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error)
	Delete(ctx context.Context, userID, petID string) error
	DeleteByPet(ctx context.Context, petID string) error
	DeleteByUser(ctx context.Context, userID string) error
}
