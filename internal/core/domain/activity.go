package domain

import "time"

type ActivityType string

const (
	ActivityAuth     ActivityType = "auth"
	ActivityUser     ActivityType = "user"
	ActivityPet      ActivityType = "pet"
	ActivityAdoption ActivityType = "adoption"
	ActivityChat     ActivityType = "chat"
	ActivitySetting  ActivityType = "setting"
)

// Activity is an append-only audit entry.
type Activity struct {
	ID          string            `json:"id"`
	Type        ActivityType      `json:"type"`
	Action      string            `json:"action"`
	Description string            `json:"description"`
	UserID      string            `json:"user_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
