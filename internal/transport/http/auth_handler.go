package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/validation"
)

type AuthHandler struct {
	accounts     *app.AccountService
	cookieSecure bool
}

func NewAuthHandler(accounts *app.AccountService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{accounts: accounts, cookieSecure: cookieSecure}
}

type sessionView struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expiresAt"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form validation.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	signIn, err := h.accounts.Login(c.Request.Context(), form)
	if err != nil {
		writeError(c, err)
		return
	}
	setSessionCookie(c, signIn.Token, signIn.Session.ExpiresAt, h.cookieSecure)
	s := signIn.Session
	respond(c, http.StatusOK, "Login successful", sessionView{
		Token:     signIn.Token,
		UserID:    s.UserID,
		Email:     s.Email,
		FullName:  s.FullName,
		Role:      s.Role,
		ExpiresAt: s.ExpiresAt.Format(http.TimeFormat),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context(), currentSession(c)); err != nil {
		writeError(c, err)
		return
	}
	clearSessionCookie(c, h.cookieSecure)
	respond(c, http.StatusOK, "Logged out", nil)
}

// Me returns the signed-in console user.
func (h *AuthHandler) Me(c *gin.Context) {
	s := currentSession(c)
	respond(c, http.StatusOK, "", sessionView{
		UserID:    s.UserID,
		Email:     s.Email,
		FullName:  s.FullName,
		Role:      s.Role,
		ExpiresAt: s.ExpiresAt.Format(http.TimeFormat),
	})
}

// ChangePassword signs the user out on success.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var form validation.PasswordChangeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	msg, err := h.accounts.ChangePassword(c.Request.Context(), currentSession(c), form)
	if err != nil {
		writeError(c, err)
		return
	}
	clearSessionCookie(c, h.cookieSecure)
	respond(c, http.StatusOK, msg, gin.H{"reauthenticate": true})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var form validation.ForgotPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	msg, err := h.accounts.ForgotPassword(c.Request.Context(), form)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, msg, nil)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var form validation.VerifyOTPForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	msg, err := h.accounts.VerifyOTP(c.Request.Context(), form)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, msg, nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var form validation.ResetPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	msg, err := h.accounts.ResetPassword(c.Request.Context(), form)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, msg, nil)
}
