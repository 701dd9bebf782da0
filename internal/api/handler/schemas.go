package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"     validate:"required,oneof=USER OWNER"`
	Phone    string `json:"phone"    validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *domain.User `json:"user"`
}

type profileRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Bio       *string `json:"bio"        validate:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Location  *string `json:"location"`
}

// --- Pets ---

type petRequest struct {
	Name        string `json:"name"        validate:"required"`
	Type        string `json:"type"        validate:"required"`
	Breed       string `json:"breed"`
	Age         int    `json:"age"         validate:"gte=0"`
	Size        string `json:"size"`
	Gender      string `json:"gender"`
	Description string `json:"description" validate:"max=2000"`
	Location    string `json:"location"`
}

type petUpdateRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Breed       *string `json:"breed"`
	Age         *int    `json:"age"         validate:"omitempty,gte=0"`
	Size        *string `json:"size"`
	Gender      *string `json:"gender"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Location    *string `json:"location"`
	Available   *bool   `json:"available"`
}

type petPageResponse struct {
	Items      []*domain.Pet `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

// --- Adoptions & favorites ---

type adoptionRequest struct {
	PetID   string `json:"petId"   validate:"required"`
	Message string `json:"message" validate:"max=1000"`
}

type adoptionDecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

type favoriteRequest struct {
	PetID string `json:"petId" validate:"required"`
}

// --- Chats ---

type createChatRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type messageRequest struct {
	Content    string `json:"content"    validate:"required"`
	ReceiverID string `json:"receiverId"`
}

type readAllResponse struct {
	Updated int64 `json:"updated"`
}

// --- Admin ---

type userPageResponse struct {
	Items      []*domain.User `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

type activityPageResponse struct {
	Items      []*domain.Activity `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

type verifyRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

type settingRequest struct {
	Value       string `json:"value"`
	Category    string `json:"category"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// queryInt reads a positive integer query parameter, falling back to def
// when it is absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}
