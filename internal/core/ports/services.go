package ports

import (
	"context"
	"io"
	"time"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// RegisterInput carries the fields required to open an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
}

// LoginResult is returned on a successful sign-in.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, claims *domain.TokenClaims) error
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
}

// PetInput carries the fields of a new listing.
type PetInput struct {
	Name        string
	Type        string
	Breed       string
	Age         int
	Size        string
	Gender      string
	Description string
	Location    string
}

// PetPage is one page of a pet listing.
type PetPage struct {
	Items      []*domain.Pet
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ImageUpload describes a file received from a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type PetService interface {
	Create(ctx context.Context, owner *domain.User, in PetInput) (*domain.Pet, error)
	Get(ctx context.Context, id string, viewer *domain.User) (*domain.Pet, error)
	List(ctx context.Context, filter domain.PetFilter) (*PetPage, error)
	ListMine(ctx context.Context, owner *domain.User) ([]*domain.Pet, error)
	Update(ctx context.Context, owner *domain.User, id string, update domain.PetUpdate) (*domain.Pet, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	AddImage(ctx context.Context, owner *domain.User, petID string, upload ImageUpload) (*domain.PetImage, error)
	RemoveImage(ctx context.Context, owner *domain.User, petID, imageID string) error
	OpenImage(ctx context.Context, petID, imageID string, viewer *domain.User) (*domain.PetImage, io.ReadCloser, error)
}

type AdoptionService interface {
	Request(ctx context.Context, user *domain.User, petID, message string) (*domain.AdoptionRequest, error)
	ListMine(ctx context.Context, user *domain.User) ([]*domain.AdoptionRequest, error)
	ListReceived(ctx context.Context, owner *domain.User) ([]*domain.AdoptionRequest, error)
	Decide(ctx context.Context, owner *domain.User, id string, status domain.AdoptionStatus) (*domain.AdoptionRequest, error)
}

type FavoriteService interface {
	Add(ctx context.Context, user *domain.User, petID string) (*domain.Favorite, error)
	List(ctx context.Context, user *domain.User) ([]*domain.Favorite, error)
	Remove(ctx context.Context, user *domain.User, petID string) error
}

type ChatService interface {
	CreateChat(ctx context.Context, user *domain.User, otherID string) (*domain.Chat, bool, error)
	GetChat(ctx context.Context, chatID string, user *domain.User) (*domain.Chat, error)
	ListChats(ctx context.Context, user *domain.User) ([]*domain.ChatSummary, error)
	ListMessages(ctx context.Context, chatID string, user *domain.User) ([]*domain.Message, error)
	PostMessage(ctx context.Context, chatID string, sender *domain.User, receiverID, content string) (*domain.Message, error)
	MarkRead(ctx context.Context, chatID, messageID string, reader *domain.User) (*domain.Message, error)
	MarkAllRead(ctx context.Context, chatID string, reader *domain.User) (int64, error)
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type AdminService interface {
	ListUsers(ctx context.Context, role string, page, limit int) (*UserPage, error)
	DeleteUser(ctx context.Context, actor *domain.User, id string) error
	VerifyUser(ctx context.Context, actor *domain.User, id string, verified bool) error
	ListPets(ctx context.Context, filter domain.PetFilter) (*PetPage, error)
	DeletePet(ctx context.Context, actor *domain.User, id string) error
}

// SettingInput carries an administrator's create-or-update request.
type SettingInput struct {
	Value       string
	Category    string
	Description string
	IsPublic    bool
}

type SettingService interface {
	List(ctx context.Context, category string) ([]*domain.Setting, error)
	Public(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, actor *domain.User, key string, in SettingInput) (*domain.Setting, error)
	Delete(ctx context.Context, actor *domain.User, key string) error
}

// ActivityPage is one page of the admin activity feed.
type ActivityPage struct {
	Items      []*domain.Activity
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type ActivityService interface {
	Feed(ctx context.Context, filter ActivityFilter) (*ActivityPage, error)
}
