package app

import (
	"errors"

	"quiz-admin-console/internal/backend"
	"quiz-admin-console/internal/domain"
)

// FallbackMessage is shown when an error carries nothing fit for the user.
const FallbackMessage = "Something went wrong"

// UserMessage returns the text shown to the user for err. Backend messages are
// passed through verbatim.
func UserMessage(err error) string {
	var apiErr *backend.APIError
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		if apiErr.Message == "" {
			return FallbackMessage
		}
		return apiErr.Message
	case errors.As(err, &verr):
		return "Validation failed"
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionExpired):
		return "Please sign in again"
	case errors.Is(err, domain.ErrForbidden):
		return "You are not allowed to use the console"
	case errors.Is(err, domain.ErrNotFound):
		return "Not found"
	default:
		return FallbackMessage
	}
}
