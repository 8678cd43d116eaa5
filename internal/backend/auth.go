package backend

import (
	"context"
	"net/http"

	"quiz-admin-console/internal/domain"
)

// LoginResult is the signed-in user and the backend's token pair.
type LoginResult struct {
	User         domain.User
	Role         string
	AccessToken  string
	RefreshToken string
}

type loginData struct {
	domain.User
	Token struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"token"`
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	req, err := jsonRequest(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return LoginResult{}, err
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return LoginResult{}, err
	}
	var data loginData
	if err := decodeData(env, &data); err != nil {
		return LoginResult{}, err
	}
	if data.Token.AccessToken == "" {
		return LoginResult{}, &APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return LoginResult{
		User:         data.User,
		Role:         data.Role,
		AccessToken:  data.Token.AccessToken,
		RefreshToken: data.Token.RefreshToken,
	}, nil
}

// ChangePassword updates the signed-in user's password. The backend clears the
// refresh token, so the caller must sign in again.
func (c *Client) ChangePassword(ctx context.Context, token, current, next, confirm string) (string, error) {
	return c.message(ctx, "/auth/change-password", token, map[string]string{
		"currentPassword": current,
		"newPassword":     next,
		"confirmPassword": confirm,
	})
}

// ForgotPassword asks the backend to e-mail a reset code.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.message(ctx, "/auth/forget-password", "", map[string]string{"email": email})
}

// VerifyOTP checks a reset code.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	return c.message(ctx, "/auth/verify-otp", "", map[string]string{"email": email, "otp": otp})
}

// ResetPassword sets a new password using a verified code.
func (c *Client) ResetPassword(ctx context.Context, email, otp, next, confirm string) (string, error) {
	return c.message(ctx, "/auth/reset-password", "", map[string]string{
		"email":           email,
		"otp":             otp,
		"newPassword":     next,
		"confirmPassword": confirm,
	})
}

func (c *Client) message(ctx context.Context, path, token string, payload any) (string, error) {
	req, err := jsonRequest(http.MethodPost, path, token, payload)
	if err != nil {
		return "", err
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
