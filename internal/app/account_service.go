package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-admin-console/internal/auth"
	"quiz-admin-console/internal/domain"
	"quiz-admin-console/internal/validation"
)

// SignIn is the outcome of a successful login: the console token handed to
// the browser and the session it names.
type SignIn struct {
	Token   string         `json:"token"`
	Session domain.Session `json:"session"`
}

// AccountOptions tunes console sessions.
type AccountOptions struct {
	TTL          time.Duration
	RequiredRole string
}

// AccountService handles sign-in, console sessions and the password flows.
type AccountService struct {
	api       AccountAPI
	sessions  SessionRepository
	signer    *auth.Signer
	validator *validation.Validator
	audit     AuditLog
	opts      AccountOptions
	now       func() time.Time
	newID     func() string
}

func NewAccountService(api AccountAPI, sessions SessionRepository, signer *auth.Signer, validator *validation.Validator, audit AuditLog, opts AccountOptions) *AccountService {
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	return &AccountService{
		api:       api,
		sessions:  sessions,
		signer:    signer,
		validator: validator,
		audit:     audit,
		opts:      opts,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithClock is test-only for deterministic expiry.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	return s
}

// Login signs in against the backend and opens a console session. The
// session never outlives the backend access token.
func (s *AccountService) Login(ctx context.Context, form validation.LoginForm) (SignIn, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := s.validator.Form(form); err != nil {
		return SignIn{}, err
	}
	result, err := s.api.Login(ctx, form.Email, form.Password)
	if err != nil {
		return SignIn{}, err
	}
	if s.opts.RequiredRole != "" && !strings.EqualFold(result.Role, s.opts.RequiredRole) {
		return SignIn{}, domain.ErrForbidden
	}

	now := s.now().UTC()
	expires := now.Add(s.opts.TTL)
	if exp, ok := auth.TokenExpiry(result.AccessToken); ok && exp.Before(expires) {
		expires = exp.UTC()
	}
	if !expires.After(now) {
		return SignIn{}, domain.ErrSessionExpired
	}

	email := result.User.Email
	if email == "" {
		email = form.Email
	}
	session := domain.Session{
		ID:           s.newID(),
		UserID:       result.User.ID,
		Email:        email,
		FullName:     result.User.FullName,
		Role:         result.Role,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		CreatedAt:    now,
		ExpiresAt:    expires,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return SignIn{}, err
	}
	token, err := s.signer.Issue(session.ID, session.UserID, session.Role, now, expires)
	if err != nil {
		return SignIn{}, err
	}
	record(ctx, s.audit, s.now, session, "login", "session", session.ID)
	return SignIn{Token: token, Session: session}, nil
}

// Authenticate resolves a console token to a live session.
func (s *AccountService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Session{}, domain.ErrUnauthorized
	}
	claims, err := s.signer.Parse(token)
	if err != nil {
		return domain.Session{}, domain.ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return domain.Session{}, err
	}
	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			log.Printf("expired session delete failed: %v", err)
		}
		return domain.Session{}, domain.ErrSessionExpired
	}
	return session, nil
}

// Logout ends the console session.
func (s *AccountService) Logout(ctx context.Context, sess domain.Session) error {
	err := s.sessions.Delete(ctx, sess.ID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	return nil
}

// ChangePassword updates the password of the signed-in user. On success the
// console session is revoked and the user must sign in again.
func (s *AccountService) ChangePassword(ctx context.Context, sess domain.Session, form validation.PasswordChangeForm) (string, error) {
	if err := s.validator.Form(form); err != nil {
		return "", err
	}
	msg, err := s.api.ChangePassword(ctx, sess.AccessToken, form.CurrentPassword, form.NewPassword, form.ConfirmPassword)
	if err != nil {
		return "", err
	}
	record(ctx, s.audit, s.now, sess, "change-password", "account", sess.UserID)
	if err := s.Logout(ctx, sess); err != nil {
		log.Printf("session revoke after password change failed: %v", err)
	}
	return messageOr(msg, "Password changed successfully"), nil
}

// ForgotPassword asks the backend to e-mail a one-time code.
func (s *AccountService) ForgotPassword(ctx context.Context, form validation.ForgotPasswordForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := s.validator.Form(form); err != nil {
		return "", err
	}
	msg, err := s.api.ForgotPassword(ctx, form.Email)
	if err != nil {
		return "", err
	}
	return messageOr(msg, "OTP sent to your email"), nil
}

// VerifyOTP checks the e-mailed code.
func (s *AccountService) VerifyOTP(ctx context.Context, form validation.VerifyOTPForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	form.OTP = strings.TrimSpace(form.OTP)
	if err := s.validator.Form(form); err != nil {
		return "", err
	}
	msg, err := s.api.VerifyOTP(ctx, form.Email, form.OTP)
	if err != nil {
		return "", err
	}
	return messageOr(msg, "OTP verified"), nil
}

// ResetPassword sets a new password using a verified code.
func (s *AccountService) ResetPassword(ctx context.Context, form validation.ResetPasswordForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	form.OTP = strings.TrimSpace(form.OTP)
	if err := s.validator.Form(form); err != nil {
		return "", err
	}
	msg, err := s.api.ResetPassword(ctx, form.Email, form.OTP, form.NewPassword, form.ConfirmPassword)
	if err != nil {
		return "", err
	}
	return messageOr(msg, "Password reset successfully"), nil
}

// PurgeExpired drops sessions past their expiry.
func (s *AccountService) PurgeExpired(ctx context.Context) (int, error) {
	return s.sessions.PurgeExpired(ctx, s.now())
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
