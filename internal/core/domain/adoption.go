package domain

import (
	"errors"
	"time"
)

type AdoptionStatus string

const (
	AdoptionPending  AdoptionStatus = "pending"
	AdoptionAccepted AdoptionStatus = "accepted"
	AdoptionRejected AdoptionStatus = "rejected"
)

var ErrAdoptionNotFound = errors.New("adoption request not found")
var ErrAdoptionExists = errors.New("a pending request for this pet already exists")
var ErrAdoptionClosed = errors.New("adoption request already decided")

// AdoptionRequest links a prospective adopter to a pet.
type AdoptionRequest struct {
	ID        string         `json:"id"`
	PetID     string         `json:"pet_id"`
	UserID    string         `json:"user_id"`
	OwnerID   string         `json:"owner_id"`
	Message   string         `json:"message,omitempty"`
	Status    AdoptionStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
