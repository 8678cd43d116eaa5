package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/domain"
)

const (
	// SessionCookie carries the console token for browser clients.
	SessionCookie = "console_session"
	sessionKey    = "console.session"
)

// requireSession resolves the console token from the Authorization header,
// the session cookie or, for websocket upgrades, the token query parameter.
func requireSession(accounts *app.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := accounts.Authenticate(c.Request.Context(), sessionToken(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

func currentSession(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(domain.Session); ok {
			return session
		}
	}
	return domain.Session{}
}

func setSessionCookie(c *gin.Context, token string, expires time.Time, secure bool) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
