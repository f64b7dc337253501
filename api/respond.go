package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tanpawarit/mall-concierge/agent/account"
	contractx "github.com/tanpawarit/mall-concierge/agent/contract"
	statex "github.com/tanpawarit/mall-concierge/agent/state"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes {"error":{"message","type","code"}}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    http.StatusText(status),
			"code":    status,
		},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, contractx.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, contractx.ErrModelInvoke):
		return http.StatusBadGateway
	case errors.Is(err, statex.ErrStateNotFound):
		return http.StatusNotFound
	case errors.Is(err, contractx.ErrValidation),
		errors.Is(err, account.ErrEmptyUserID),
		errors.Is(err, statex.ErrInvalidSession):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
