// Package handlers holds what every v1 handler shares: caller identity and
// the mapping from service errors to HTTP errors.
package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/service"
	"github.com/carson-networks/budget-engine/internal/storage"
)

// UserHeader carries the caller's user ID, set by the identity proxy in
// front of the API.
const UserHeader = "X-User-ID"

// ParseUserID validates the caller's user ID header.
func ParseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+UserHeader+" header", err)
	}
	return id, nil
}

// Error maps a service error to the HTTP error returned to the caller.
func Error(err error, msg string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return huma.NewError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, storage.ErrNotFound):
		return huma.NewError(http.StatusNotFound, msg+": not found", err)
	default:
		return huma.NewError(http.StatusInternalServerError, msg, err)
	}
}
