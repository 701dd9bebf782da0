package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

const maxAdoptionMessage = 1000

// Routing keys of adoption events handed to the broker.
const (
	EventAdoptionRequested = "adoption.requested"
	EventAdoptionDecided   = "adoption.decided"
)

// AdoptionEvent is the payload published for the notification mailer.
type AdoptionEvent struct {
	RequestID string                `json:"request_id"`
	PetID     string                `json:"pet_id"`
	PetName   string                `json:"pet_name"`
	UserID    string                `json:"user_id"`
	OwnerID   string                `json:"owner_id"`
	Status    domain.AdoptionStatus `json:"status"`
	At        time.Time             `json:"at"`
}

type AdoptionService struct {
	adoptions ports.AdoptionRepository
	pets      ports.PetRepository
	publisher ports.EventPublisher
	activity  ports.ActivityRecorder
	log       zerolog.Logger
}

// NewAdoptionService wires the service. publisher may be nil.
func NewAdoptionService(
	adoptions ports.AdoptionRepository,
	pets ports.PetRepository,
	publisher ports.EventPublisher,
	activity ports.ActivityRecorder,
	log zerolog.Logger,
) *AdoptionService {
	return &AdoptionService{
		adoptions: adoptions,
		pets:      pets,
		publisher: publisher,
		activity:  recorderOrNop(activity),
		log:       log,
	}
}

// Request files an adoption request. A user holds at most one pending
// request per pet; asking again after a rejection is allowed.
func (s *AdoptionService) Request(ctx context.Context, user *domain.User, petID, message string) (*domain.AdoptionRequest, error) {
	message = strings.TrimSpace(message)
	if petID == "" {
		return nil, fmt.Errorf("%w: petId is required", domain.ErrInvalidInput)
	}
	if len(message) > maxAdoptionMessage {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, maxAdoptionMessage)
	}

	pet, err := s.pets.FindByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if !pet.Available {
		return nil, domain.ErrPetNotFound
	}
	if pet.OwnerID == user.ID {
		return nil, fmt.Errorf("%w: cannot adopt your own pet", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	created, err := s.adoptions.Create(ctx, &domain.AdoptionRequest{
		PetID:     pet.ID,
		UserID:    user.ID,
		OwnerID:   pet.OwnerID,
		Message:   message,
		Status:    domain.AdoptionPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(activity(domain.ActivityAdoption, "request", user.ID, "requested to adopt "+pet.Name,
		map[string]string{"pet_id": pet.ID, "request_id": created.ID}))
	s.publish(EventAdoptionRequested, created, pet.Name)
	return created, nil
}

func (s *AdoptionService) ListMine(ctx context.Context, user *domain.User) ([]*domain.AdoptionRequest, error) {
	return s.adoptions.ListByUser(ctx, user.ID)
}

func (s *AdoptionService) ListReceived(ctx context.Context, owner *domain.User) ([]*domain.AdoptionRequest, error) {
	return s.adoptions.ListByOwner(ctx, owner.ID)
}

// Decide accepts or rejects a pending request on one of the owner's pets.
// Accepting takes the pet off the market and rejects every other pending
// request for it.
func (s *AdoptionService) Decide(ctx context.Context, owner *domain.User, id string, status domain.AdoptionStatus) (*domain.AdoptionRequest, error) {
	if status != domain.AdoptionAccepted && status != domain.AdoptionRejected {
		return nil, fmt.Errorf("%w: status must be accepted or rejected", domain.ErrInvalidInput)
	}

	req, err := s.adoptions.FindByIDAndOwner(ctx, id, owner.ID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.AdoptionPending {
		return nil, domain.ErrAdoptionClosed
	}
	if err := s.adoptions.UpdateStatus(ctx, req.ID, status); err != nil {
		return nil, err
	}
	req.Status = status
	req.UpdatedAt = time.Now().UTC()

	petName := ""
	if status == domain.AdoptionAccepted {
		if err := s.pets.SetAvailable(ctx, req.PetID, false); err != nil {
			return nil, fmt.Errorf("mark pet adopted: %w", err)
		}
		n, err := s.adoptions.RejectPendingForPet(ctx, req.PetID, req.ID)
		if err != nil {
			return nil, fmt.Errorf("reject competing requests: %w", err)
		}
		s.log.Info().Str("pet_id", req.PetID).Int64("rejected", n).Msg("pet adopted")
	}
	if pet, err := s.pets.FindByID(ctx, req.PetID); err == nil {
		petName = pet.Name
	}

	s.activity.Record(activity(domain.ActivityAdoption, string(status), owner.ID,
		fmt.Sprintf("request %s %s", req.ID, status),
		map[string]string{"pet_id": req.PetID, "request_id": req.ID, "user_id": req.UserID}))
	s.publish(EventAdoptionDecided, req, petName)
	return req, nil
}

func (s *AdoptionService) publish(key string, req *domain.AdoptionRequest, petName string) {
	if s.publisher == nil {
		return
	}
	ev := AdoptionEvent{
		RequestID: req.ID,
		PetID:     req.PetID,
		PetName:   petName,
		UserID:    req.UserID,
		OwnerID:   req.OwnerID,
		Status:    req.Status,
		At:        time.Now().UTC(),
	}
	if err := s.publisher.Publish(key, ev); err != nil {
		s.log.Warn().Err(err).Str("routing_key", key).Str("request_id", req.ID).Msg("publish adoption event failed")
	}
}
