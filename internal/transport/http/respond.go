package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-admin-console/internal/backend"
	"quiz-admin-console/internal/domain"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Status: "success", Message: message, Data: data})
}

func abortWith(c *gin.Context, status int, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, errorEnvelope{Status: "error", Message: message, Errors: fields})
}

// writeError maps service errors onto HTTP responses. Backend messages are
// passed through verbatim.
func writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &verr):
		abortWith(c, http.StatusUnprocessableEntity, "Validation failed", verr.Fields)
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		abortWith(c, status, apiErr.Message, nil)
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionExpired):
		abortWith(c, http.StatusUnauthorized, "Please sign in again", nil)
	case errors.Is(err, domain.ErrForbidden):
		abortWith(c, http.StatusForbidden, "You are not allowed to use the console", nil)
	case errors.Is(err, domain.ErrNotFound):
		abortWith(c, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, context.Canceled):
		c.Abort()
	default:
		log.Printf("request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		abortWith(c, http.StatusInternalServerError, "Something went wrong", nil)
	}
}

func badRequest(c *gin.Context, message string) {
	abortWith(c, http.StatusBadRequest, message, nil)
}
