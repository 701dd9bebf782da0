package ports

import (
	"context"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// AdoptionRepository persists adoption requests. At most one pending request
// exists per (user, pet); Create reports domain.ErrAdoptionExists otherwise.
type AdoptionRepository interface {
	Create(ctx context.Context, req *domain.AdoptionRequest) (*domain.AdoptionRequest, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.AdoptionRequest, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.AdoptionRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.AdoptionRequest, error)
	// UpdateStatus only transitions requests that are still pending.
	UpdateStatus(ctx context.Context, id string, status domain.AdoptionStatus) error
	RejectPendingForPet(ctx context.Context, petID, exceptID string) (int64, error)
	DeleteByPet(ctx context.Context, petID string) error
	DeleteByUser(ctx context.Context, userID string) error
}
