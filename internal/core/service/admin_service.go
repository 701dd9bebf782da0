package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// AdminService backs the back-office. User deletion cascades to the user's
// pets (and their dependents), adoption requests, favorites and chats.
type AdminService struct {
	users     ports.UserRepository
	pets      *PetService
	petRepo   ports.PetRepository
	adoptions ports.AdoptionRepository
	favorites ports.FavoriteRepository
	chats     ports.ChatRepository
	activity  ports.ActivityRecorder
	log       zerolog.Logger
}

func NewAdminService(
	users ports.UserRepository,
	pets *PetService,
	petRepo ports.PetRepository,
	adoptions ports.AdoptionRepository,
	favorites ports.FavoriteRepository,
	chats ports.ChatRepository,
	activity ports.ActivityRecorder,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		pets:      pets,
		petRepo:   petRepo,
		adoptions: adoptions,
		favorites: favorites,
		chats:     chats,
		activity:  recorderOrNop(activity),
		log:       log,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, role string, page, limit int) (*ports.UserPage, error) {
	if role != "" && !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	page, limit = normalizePage(page, limit)
	items, total, err := s.users.List(ctx, role, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.UserPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// DeleteUser removes a non-admin account and everything it owns.
func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdmin {
		return domain.ErrAdminUndeletable
	}

	pets, err := s.petRepo.ListByOwner(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, p := range pets {
		if err := s.pets.purge(ctx, p.ID); err != nil {
			return err
		}
	}
	if err := s.adoptions.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user adoption requests: %w", err)
	}
	if err := s.favorites.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user favorites: %w", err)
	}
	if err := s.chats.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user chats: %w", err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Int("pets", len(pets)).Str("by", actor.ID).Msg("user deleted")
	s.activity.Record(activity(domain.ActivityUser, "delete", actor.ID, "deleted user "+user.Email,
		map[string]string{"target_id": user.ID}))
	return nil
}

func (s *AdminService) VerifyUser(ctx context.Context, actor *domain.User, id string, verified bool) error {
	if err := s.users.SetVerified(ctx, id, verified); err != nil {
		return err
	}
	action := "verify"
	if !verified {
		action = "unverify"
	}
	s.activity.Record(activity(domain.ActivityUser, action, actor.ID, action+" user "+id,
		map[string]string{"target_id": id}))
	return nil
}

// ListPets lists every pet regardless of availability.
func (s *AdminService) ListPets(ctx context.Context, filter domain.PetFilter) (*ports.PetPage, error) {
	filter.AvailableOnly = false
	return s.pets.List(ctx, filter)
}

func (s *AdminService) DeletePet(ctx context.Context, actor *domain.User, id string) error {
	return s.pets.Delete(ctx, actor, id)
}
