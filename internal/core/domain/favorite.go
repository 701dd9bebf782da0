package domain

import (
	"errors"
	"time"
)

var ErrFavoriteExists = errors.New("pet already in favorites")
var ErrFavoriteNotFound = errors.New("favorite not found")

// Favorite is unique per (UserID, PetID).
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PetID     string    `json:"pet_id"`
	CreatedAt time.Time `json:"created_at"`
}
