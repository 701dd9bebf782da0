package domain

import (
	"errors"
	"time"
)

const (
	RoleUser  = "USER"
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrAdminUndeletable = errors.New("administrators cannot be deleted")

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// User models an account in the marketplace. PasswordHash never leaves the
// persistence boundary in API responses.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Verified     bool      `json:"verified"`
	Bio          string    `json:"bio,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Location     string    `json:"location,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns the projection that is safe to show to other users.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Role: u.Role, AvatarURL: u.AvatarURL}
}

// PublicUser is the subset of a user visible to chat partners and pet viewers.
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ProfileUpdate carries the optional fields a user may change on themselves.
type ProfileUpdate struct {
	Name      *string
	Phone     *string
	Bio       *string
	AvatarURL *string
	Location  *string
}
