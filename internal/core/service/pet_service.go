package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

const (
	DefaultMaxUploadBytes = 5 << 20
	DefaultMaxImages      = 10
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// PetService manages listings and their images. Pet deletion cascades to
// images, adoption requests and favorites.
type PetService struct {
	pets      ports.PetRepository
	images    ports.ImageStore
	adoptions ports.AdoptionRepository
	favorites ports.FavoriteRepository
	activity  ports.ActivityRecorder
	maxBytes  int64
	maxImages int
	log       zerolog.Logger
}

func NewPetService(
	pets ports.PetRepository,
	images ports.ImageStore,
	adoptions ports.AdoptionRepository,
	favorites ports.FavoriteRepository,
	activity ports.ActivityRecorder,
	maxBytes int64,
	log zerolog.Logger,
) *PetService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &PetService{
		pets:      pets,
		images:    images,
		adoptions: adoptions,
		favorites: favorites,
		activity:  recorderOrNop(activity),
		maxBytes:  maxBytes,
		maxImages: DefaultMaxImages,
		log:       log,
	}
}

func (s *PetService) Create(ctx context.Context, owner *domain.User, in ports.PetInput) (*domain.Pet, error) {
	name := strings.TrimSpace(in.Name)
	petType := strings.TrimSpace(in.Type)
	if name == "" || petType == "" {
		return nil, fmt.Errorf("%w: name and type are required", domain.ErrInvalidInput)
	}
	if in.Age < 0 {
		return nil, fmt.Errorf("%w: age cannot be negative", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	pet := &domain.Pet{
		OwnerID:     owner.ID,
		Name:        name,
		Type:        petType,
		Breed:       strings.TrimSpace(in.Breed),
		Age:         in.Age,
		Size:        strings.TrimSpace(in.Size),
		Gender:      strings.TrimSpace(in.Gender),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Available:   true,
		ImageIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.pets.Create(ctx, pet)
	if err != nil {
		return nil, err
	}

	s.activity.Record(activity(domain.ActivityPet, "create", owner.ID, "listed "+created.Name,
		map[string]string{"pet_id": created.ID}))
	return created, nil
}

// Get returns a pet. Listings that are no longer available are visible only
// to their owner and to administrators.
func (s *PetService) Get(ctx context.Context, id string, viewer *domain.User) (*domain.Pet, error) {
	pet, err := s.pets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pet.Available && !canManagePet(viewer, pet) {
		return nil, domain.ErrPetNotFound
	}
	return pet, nil
}

func (s *PetService) List(ctx context.Context, filter domain.PetFilter) (*ports.PetPage, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	items, total, err := s.pets.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.PetPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *PetService) ListMine(ctx context.Context, owner *domain.User) ([]*domain.Pet, error) {
	return s.pets.ListByOwner(ctx, owner.ID)
}

func (s *PetService) Update(ctx context.Context, owner *domain.User, id string, update domain.PetUpdate) (*domain.Pet, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
	}
	if update.Age != nil && *update.Age < 0 {
		return nil, fmt.Errorf("%w: age cannot be negative", domain.ErrInvalidInput)
	}
	return s.pets.Update(ctx, id, owner.ID, update)
}

// Delete removes a pet and everything hanging off it. Owners may only delete
// their own pets; administrators may delete any.
func (s *PetService) Delete(ctx context.Context, actor *domain.User, id string) error {
	var (
		pet *domain.Pet
		err error
	)
	if actor.Role == domain.RoleAdmin {
		pet, err = s.pets.FindByID(ctx, id)
	} else {
		pet, err = s.pets.FindByIDAndOwner(ctx, id, actor.ID)
	}
	if err != nil {
		return err
	}
	if err := s.purge(ctx, pet.ID); err != nil {
		return err
	}

	s.activity.Record(activity(domain.ActivityPet, "delete", actor.ID, "deleted "+pet.Name,
		map[string]string{"pet_id": pet.ID, "owner_id": pet.OwnerID}))
	return nil
}

// purge deletes dependents first so a failure never leaves orphans behind a
// missing pet.
func (s *PetService) purge(ctx context.Context, petID string) error {
	if err := s.images.DeleteByPet(ctx, petID); err != nil {
		return fmt.Errorf("delete pet images: %w", err)
	}
	if err := s.adoptions.DeleteByPet(ctx, petID); err != nil {
		return fmt.Errorf("delete pet adoption requests: %w", err)
	}
	if err := s.favorites.DeleteByPet(ctx, petID); err != nil {
		return fmt.Errorf("delete pet favorites: %w", err)
	}
	if err := s.pets.Delete(ctx, petID); err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	return nil
}

func (s *PetService) AddImage(ctx context.Context, owner *domain.User, petID string, upload ports.ImageUpload) (*domain.PetImage, error) {
	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	if !allowedImageTypes[contentType] {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidInput, upload.ContentType)
	}
	if upload.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, s.maxBytes)
	}

	pet, err := s.pets.FindByIDAndOwner(ctx, petID, owner.ID)
	if err != nil {
		return nil, err
	}
	if len(pet.ImageIDs) >= s.maxImages {
		return nil, fmt.Errorf("%w: a pet can have at most %d images", domain.ErrInvalidInput, s.maxImages)
	}

	image, err := s.images.Save(ctx, pet.ID, upload.Filename, contentType, io.LimitReader(upload.Body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	if err := s.pets.AddImage(ctx, pet.ID, image.ID); err != nil {
		if delErr := s.images.Delete(ctx, pet.ID, image.ID); delErr != nil {
			s.log.Warn().Err(delErr).Str("image_id", image.ID).Msg("orphaned image cleanup failed")
		}
		return nil, err
	}
	return image, nil
}

func (s *PetService) RemoveImage(ctx context.Context, owner *domain.User, petID, imageID string) error {
	pet, err := s.pets.FindByIDAndOwner(ctx, petID, owner.ID)
	if err != nil {
		return err
	}
	if err := s.images.Delete(ctx, pet.ID, imageID); err != nil {
		return err
	}
	return s.pets.RemoveImage(ctx, pet.ID, imageID)
}

// OpenImage streams a stored image. Images follow the visibility of their
// pet, so those of unavailable pets open only for the owner and admins.
func (s *PetService) OpenImage(ctx context.Context, petID, imageID string, viewer *domain.User) (*domain.PetImage, io.ReadCloser, error) {
	if _, err := s.Get(ctx, petID, viewer); err != nil {
		return nil, nil, err
	}
	image, err := s.images.Find(ctx, petID, imageID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.images.Open(ctx, image)
	if err != nil {
		return nil, nil, err
	}
	return image, rc, nil
}

func canManagePet(u *domain.User, pet *domain.Pet) bool {
	if u == nil {
		return false
	}
	return u.Role == domain.RoleAdmin || u.ID == pet.OwnerID
}
