package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

type favoriteService struct {
	favorites ports.FavoriteRepository
	pets      ports.PetRepository
}

func NewFavoriteService(favorites ports.FavoriteRepository, pets ports.PetRepository) ports.FavoriteService {
	return &favoriteService{favorites: favorites, pets: pets}
}

func (s *favoriteService) Add(ctx context.Context, user *domain.User, petID string) (*domain.Favorite, error) {
	if petID == "" {
		return nil, fmt.Errorf("%w: petId is required", domain.ErrInvalidInput)
	}
	if _, err := s.pets.FindByID(ctx, petID); err != nil {
		return nil, err
	}
	return s.favorites.Create(ctx, &domain.Favorite{
		UserID:    user.ID,
		PetID:     petID,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *favoriteService) List(ctx context.Context, user *domain.User) ([]*domain.Favorite, error) {
	return s.favorites.ListByUser(ctx, user.ID)
}

func (s *favoriteService) Remove(ctx context.Context, user *domain.User, petID string) error {
	return s.favorites.Delete(ctx, user.ID, petID)
}
