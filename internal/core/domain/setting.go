package domain

import (
	"errors"
	"time"
)

var ErrSettingNotFound = errors.New("setting not found")

// PublicSettingKeys is the allow-list of keys the public endpoint may expose,
// provided the setting is also flagged public.
var PublicSettingKeys = []string{
	"site_name",
	"site_description",
	"contact_email",
	"contact_phone",
	"maintenance_mode",
	"allow_registrations",
	"max_images_per_pet",
}

// Setting is a keyed configuration value managed by administrators.
type Setting struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	UpdatedAt   time.Time `json:"updated_at"`
}
