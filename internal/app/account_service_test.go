package app_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quiz-admin-console/internal/backend"
	"quiz-admin-console/internal/backend/backendtest"
	"quiz-admin-console/internal/domain"
	"quiz-admin-console/internal/validation"
)

func login(t *testing.T, env *testEnv) (string, domain.Session) {
	t.Helper()
	signIn, err := env.accounts.Login(context.Background(), validation.LoginForm{Email: " admin@quiz.io ", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return signIn.Token, signIn.Session
}

func TestLoginOpensSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	token, sess := login(t, env)
	if token == "" || sess.AccessToken != "backend-access" || sess.Role != "admin" || sess.Email != "admin@quiz.io" {
		t.Fatalf("unexpected sign-in %q %+v", token, sess)
	}
	if d := time.Until(sess.ExpiresAt); d <= 59*time.Minute || d > time.Hour {
		t.Fatalf("expected session ttl of one hour, got %v", d)
	}

	got, err := env.accounts.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != sess.ID {
		t.Fatalf("expected session %s, got %s", sess.ID, got.ID)
	}
}

func TestLoginCapsExpiryAtBackendToken(t *testing.T) {
	env := newTestEnv(t)
	exp := time.Now().Add(10 * time.Minute)
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("backend-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	env.fake.Update(func(s *backendtest.Server) { s.AccessToken = access })

	_, sess := login(t, env)
	if sess.ExpiresAt.Sub(exp.Truncate(time.Second)).Abs() > time.Second {
		t.Fatalf("expected expiry %v, got %v", exp, sess.ExpiresAt)
	}
}

func TestLoginRejectsOtherRoles(t *testing.T) {
	env := newTestEnv(t)
	env.fake.Update(func(s *backendtest.Server) { s.Role = "user" })

	_, err := env.accounts.Login(context.Background(), validation.LoginForm{Email: "admin@quiz.io", Password: "secret123"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if purged, _ := env.sessions.PurgeExpired(context.Background(), time.Now().Add(24*time.Hour)); purged != 0 {
		t.Fatalf("expected no session stored, found %d", purged)
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.accounts.Login(context.Background(), validation.LoginForm{Email: "not-an-email", Password: ""})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["email"] == "" || verr.Fields["password"] == "" {
		t.Fatalf("expected field errors, got %v", err)
	}
	if got := env.fake.Calls("POST /auth/login"); got != 0 {
		t.Fatalf("expected no backend call, got %d", got)
	}

	_, err = env.accounts.Login(context.Background(), validation.LoginForm{Email: "admin@quiz.io", Password: "wrong"})
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Invalid email or password" {
		t.Fatalf("expected backend rejection, got %v", err)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	for _, token := range []string{"", "garbage"} {
		if _, err := env.accounts.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("token %q: expected unauthorized, got %v", token, err)
		}
	}
}

func TestAuthenticateExpiresSessions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	token, _ := login(t, env)

	env.accounts.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	if _, err := env.accounts.Authenticate(ctx, token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestPurgeExpiredDropsOldSessions(t *testing.T) {
	env := newTestEnv(t)
	login(t, env)

	env.accounts.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	purged, err := env.accounts.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected one purged session, got %d", purged)
	}
}

func TestChangePasswordRevokesSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	token, sess := login(t, env)

	msg, err := env.accounts.ChangePassword(ctx, sess, validation.PasswordChangeForm{
		CurrentPassword: "secret123",
		NewPassword:     "brandnew123",
		ConfirmPassword: "brandnew123",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}
	if msg != "Password changed successfully" {
		t.Fatalf("unexpected message %q", msg)
	}
	if _, err := env.accounts.Authenticate(ctx, token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session revoked, got %v", err)
	}
	if _, err := env.accounts.Login(ctx, validation.LoginForm{Email: "admin@quiz.io", Password: "brandnew123"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestChangePasswordFailuresKeepSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	token, sess := login(t, env)

	_, err := env.accounts.ChangePassword(ctx, sess, validation.PasswordChangeForm{
		CurrentPassword: "secret123",
		NewPassword:     "secret123",
		ConfirmPassword: "different1",
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["newPassword"] == "" || verr.Fields["confirmPassword"] == "" {
		t.Fatalf("expected field errors, got %v", err)
	}

	_, err = env.accounts.ChangePassword(ctx, sess, validation.PasswordChangeForm{
		CurrentPassword: "wrongpass",
		NewPassword:     "brandnew123",
		ConfirmPassword: "brandnew123",
	})
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Current password is incorrect" {
		t.Fatalf("expected backend message, got %v", err)
	}
	if _, err := env.accounts.Authenticate(ctx, token); err != nil {
		t.Fatalf("expected session kept after failure, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	if msg, err := env.accounts.ForgotPassword(ctx, validation.ForgotPasswordForm{Email: "admin@quiz.io"}); err != nil || msg != "OTP sent to your email" {
		t.Fatalf("forgot password: %q %v", msg, err)
	}

	_, err := env.accounts.VerifyOTP(ctx, validation.VerifyOTPForm{Email: "admin@quiz.io", OTP: "12345"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["otp"] != "Please enter full OTP" {
		t.Fatalf("expected short otp rejected, got %v", err)
	}
	if _, err := env.accounts.VerifyOTP(ctx, validation.VerifyOTPForm{Email: "admin@quiz.io", OTP: "654321"}); err == nil {
		t.Fatalf("expected wrong otp rejected by backend")
	}
	if _, err := env.accounts.VerifyOTP(ctx, validation.VerifyOTPForm{Email: "admin@quiz.io", OTP: "123456"}); err != nil {
		t.Fatalf("verify otp: %v", err)
	}

	_, err = env.accounts.ResetPassword(ctx, validation.ResetPasswordForm{Email: "admin@quiz.io", OTP: "123456", NewPassword: "resetpass1", ConfirmPassword: "resetpass2"})
	if !errors.As(err, &verr) || verr.Fields["confirmPassword"] != "Passwords don't match" {
		t.Fatalf("expected mismatch rejected, got %v", err)
	}
	if _, err := env.accounts.ResetPassword(ctx, validation.ResetPasswordForm{Email: "admin@quiz.io", OTP: "123456", NewPassword: "resetpass1", ConfirmPassword: "resetpass1"}); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, err := env.accounts.Login(ctx, validation.LoginForm{Email: "admin@quiz.io", Password: "resetpass1"}); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
}
