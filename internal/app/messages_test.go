package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/backend"
	"quiz-admin-console/internal/domain"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&backend.APIError{StatusCode: 401, Message: "Unauthorized"}, "Unauthorized"},
		{fmt.Errorf("list quizzes: %w", &backend.APIError{StatusCode: 400, Message: "Invalid page"}), "Invalid page"},
		{&backend.APIError{StatusCode: 500}, app.FallbackMessage},
		{domain.NewValidationError("quizAnswer", "Answer is required"), "Validation failed"},
		{domain.ErrSessionExpired, "Please sign in again"},
		{domain.ErrNotFound, "Not found"},
		{context.DeadlineExceeded, app.FallbackMessage},
		{errors.New("dial tcp: connection refused"), app.FallbackMessage},
	}
	for _, tc := range cases {
		if got := app.UserMessage(tc.err); got != tc.want {
			t.Fatalf("UserMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
