package domain

import (
	"errors"
	"time"
)

var ErrPetNotFound = errors.New("pet not found")
var ErrImageNotFound = errors.New("image not found")

// Pet is a listing owned by exactly one OWNER account. Only available pets
// show up in public listings.
type Pet struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Breed       string    `json:"breed,omitempty"`
	Age         int       `json:"age"`
	Size        string    `json:"size,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Available   bool      `json:"available"`
	ImageIDs    []string  `json:"image_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PetImage references an uploaded file stored alongside the pet.
type PetImage struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	FileID      string    `json:"-"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// PetFilter narrows public and admin listings. Zero values mean "any".
type PetFilter struct {
	OwnerID       string
	Type          string
	Size          string
	Gender        string
	Breed         string
	Query         string
	AvailableOnly bool
	Page          int
	Limit         int
}

// PetUpdate carries a partial update; nil fields are left untouched.
type PetUpdate struct {
	Name        *string
	Type        *string
	Breed       *string
	Age         *int
	Size        *string
	Gender      *string
	Description *string
	Location    *string
	Available   *bool
}
