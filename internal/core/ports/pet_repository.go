package ports

import (
	"context"
	"io"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// PetRepository defines persistence for pet listings. Lookups that take an
// ownerID fold ownership into the filter: a pet owned by someone else is
// reported as domain.ErrPetNotFound.
type PetRepository interface {
	Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error)
	FindByID(ctx context.Context, id string) (*domain.Pet, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Pet, error)
	List(ctx context.Context, filter domain.PetFilter) ([]*domain.Pet, int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Pet, error)
	Update(ctx context.Context, id, ownerID string, update domain.PetUpdate) (*domain.Pet, error)
	SetAvailable(ctx context.Context, id string, available bool) error
	AddImage(ctx context.Context, petID, imageID string) error
	RemoveImage(ctx context.Context, petID, imageID string) error
	Delete(ctx context.Context, id string) error
}

// ImageStore keeps pet image blobs and their metadata records.
type ImageStore interface {
	Save(ctx context.Context, petID, filename, contentType string, r io.Reader) (*domain.PetImage, error)
	Find(ctx context.Context, petID, imageID string) (*domain.PetImage, error)
	Open(ctx context.Context, image *domain.PetImage) (io.ReadCloser, error)
	Delete(ctx context.Context, petID, imageID string) error
	DeleteByPet(ctx context.Context, petID string) error
}
