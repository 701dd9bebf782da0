package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/api/middleware"
	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// newTestEcho mirrors the production error envelope without importing the
// api package.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, errorResponse{Error: "http error"})
			return
		}
		if code, msg, ok := StatusFor(err); ok {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
	return e
}

// asUser wraps h so it runs with u injected the way the role wrapper does.
func asUser(u *domain.User, h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(middleware.UserKey, u)
		c.Set(middleware.ClaimsKey, &domain.TokenClaims{UserID: u.ID, Role: u.Role, TokenID: "jti-" + u.ID})
		return h(c)
	}
}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, claims *domain.TokenClaims) error
	profileFn  func(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, claims *domain.TokenClaims) error {
	return s.logoutFn(ctx, claims)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	return s.profileFn(ctx, userID, update)
}

type stubPetService struct {
	listFn     func(ctx context.Context, filter domain.PetFilter) (*ports.PetPage, error)
	getFn      func(ctx context.Context, id string, viewer *domain.User) (*domain.Pet, error)
	createFn   func(ctx context.Context, owner *domain.User, in ports.PetInput) (*domain.Pet, error)
	addImageFn func(ctx context.Context, owner *domain.User, petID string, upload ports.ImageUpload) (*domain.PetImage, error)
	openFn     func(ctx context.Context, petID, imageID string, viewer *domain.User) (*domain.PetImage, io.ReadCloser, error)
	deleteFn   func(ctx context.Context, actor *domain.User, id string) error
}

func (s *stubPetService) Create(ctx context.Context, owner *domain.User, in ports.PetInput) (*domain.Pet, error) {
	return s.createFn(ctx, owner, in)
}

func (s *stubPetService) Get(ctx context.Context, id string, viewer *domain.User) (*domain.Pet, error) {
	return s.getFn(ctx, id, viewer)
}

func (s *stubPetService) List(ctx context.Context, filter domain.PetFilter) (*ports.PetPage, error) {
	return s.listFn(ctx, filter)
}

func (s *stubPetService) ListMine(ctx context.Context, owner *domain.User) ([]*domain.Pet, error) {
	return nil, nil
}

func (s *stubPetService) Update(ctx context.Context, owner *domain.User, id string, update domain.PetUpdate) (*domain.Pet, error) {
	return nil, domain.ErrPetNotFound
}

func (s *stubPetService) Delete(ctx context.Context, actor *domain.User, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubPetService) AddImage(ctx context.Context, owner *domain.User, petID string, upload ports.ImageUpload) (*domain.PetImage, error) {
	return s.addImageFn(ctx, owner, petID, upload)
}

func (s *stubPetService) RemoveImage(ctx context.Context, owner *domain.User, petID, imageID string) error {
	return nil
}

func (s *stubPetService) OpenImage(ctx context.Context, petID, imageID string, viewer *domain.User) (*domain.PetImage, io.ReadCloser, error) {
	return s.openFn(ctx, petID, imageID, viewer)
}

type stubChatService struct {
	createFn func(ctx context.Context, user *domain.User, otherID string) (*domain.Chat, bool, error)
	postFn   func(ctx context.Context, chatID string, sender *domain.User, receiverID, content string) (*domain.Message, error)
}

func (s *stubChatService) CreateChat(ctx context.Context, user *domain.User, otherID string) (*domain.Chat, bool, error) {
	return s.createFn(ctx, user, otherID)
}

func (s *stubChatService) GetChat(ctx context.Context, chatID string, user *domain.User) (*domain.Chat, error) {
	return nil, domain.ErrChatNotFound
}

func (s *stubChatService) ListChats(ctx context.Context, user *domain.User) ([]*domain.ChatSummary, error) {
	return []*domain.ChatSummary{}, nil
}

func (s *stubChatService) ListMessages(ctx context.Context, chatID string, user *domain.User) ([]*domain.Message, error) {
	return nil, domain.ErrChatNotFound
}

func (s *stubChatService) PostMessage(ctx context.Context, chatID string, sender *domain.User, receiverID, content string) (*domain.Message, error) {
	return s.postFn(ctx, chatID, sender, receiverID, content)
}

func (s *stubChatService) MarkRead(ctx context.Context, chatID, messageID string, reader *domain.User) (*domain.Message, error) {
	return nil, domain.ErrForbidden
}

func (s *stubChatService) MarkAllRead(ctx context.Context, chatID string, reader *domain.User) (int64, error) {
	return 3, nil
}

type stubAdminService struct {
	verified map[string]bool
	deleteFn func(ctx context.Context, actor *domain.User, id string) error
}

func (s *stubAdminService) ListUsers(ctx context.Context, role string, page, limit int) (*ports.UserPage, error) {
	return &ports.UserPage{Page: page, Limit: 20}, nil
}

func (s *stubAdminService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubAdminService) VerifyUser(ctx context.Context, actor *domain.User, id string, verified bool) error {
	s.verified[id] = verified
	return nil
}

func (s *stubAdminService) ListPets(ctx context.Context, filter domain.PetFilter) (*ports.PetPage, error) {
	return &ports.PetPage{}, nil
}

func (s *stubAdminService) DeletePet(ctx context.Context, actor *domain.User, id string) error {
	return nil
}
