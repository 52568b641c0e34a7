package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
)

// Payload is the envelope of every JSON response.
type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorStatus maps a service error to an HTTP status and a message that is
// safe to show to an anonymous caller. ok is false for unclassified errors.
func errorStatus(err error) (status int, msg string, ok bool) {
	var pe *cryptox.PolicyError
	switch {
	case errors.As(err, &pe), errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.ErrInvalidCredentials.Error(), true
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized", true
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, common.ErrRateLimited.Error(), true
	case errors.Is(err, common.ErrShareExhausted):
		return http.StatusGone, common.ErrShareExhausted.Error(), true
	case errors.Is(err, common.ErrShareExpired):
		return http.StatusGone, common.ErrShareExpired.Error(), true
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "forbidden", true
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found", true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request canceled", true
	}
	return http.StatusInternalServerError, "internal error", false
}
