package handler

import (
	"errors"
	"net/http"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type statusMapping struct {
	target error
	code   int
}

// Order matters: the first sentinel found in the chain wins.
var statusMappings = []statusMapping{
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrAdminUndeletable, http.StatusForbidden},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrPetNotFound, http.StatusNotFound},
	{domain.ErrImageNotFound, http.StatusNotFound},
	{domain.ErrAdoptionNotFound, http.StatusNotFound},
	{domain.ErrFavoriteNotFound, http.StatusNotFound},
	{domain.ErrChatNotFound, http.StatusNotFound},
	{domain.ErrMessageNotFound, http.StatusNotFound},
	{domain.ErrSettingNotFound, http.StatusNotFound},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrFavoriteExists, http.StatusConflict},
	{domain.ErrAdoptionExists, http.StatusConflict},
	{domain.ErrAdoptionClosed, http.StatusConflict},
	{domain.ErrConflict, http.StatusConflict},
}

// StatusFor maps a domain error to its HTTP status and client message.
// Invalid input keeps the full wrapped text so the caller sees which field
// failed; every other sentinel is reported by its own message only. ok is
// false for errors that are not part of the domain vocabulary.
func StatusFor(err error) (code int, msg string, ok bool) {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest, err.Error(), true
	}
	for _, m := range statusMappings {
		if errors.Is(err, m.target) {
			return m.code, m.target.Error(), true
		}
	}
	return 0, "", false
}
