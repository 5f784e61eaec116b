package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/application/service"
	"github.com/sangkips/trademate-console/internal/domain/enum"
	"github.com/sangkips/trademate-console/internal/infrastructure/session"
	"github.com/sangkips/trademate-console/internal/logging"
	"github.com/sangkips/trademate-console/internal/presentation/http/dto/response"
)

const (
	sessionKey = "session"
	userIDKey  = "user_id"

	// LoginPath is where unauthenticated browsers are sent.
	LoginPath = "/login"
	// UnauthorizedPath is where signed-in users without the right role are sent.
	UnauthorizedPath = "/unauthorized"
)

// AuthConfig configures AuthMiddleware
type AuthConfig struct {
	Store     *session.Store
	TokenSkew time.Duration
	// OnExpired runs when a session's bearer token has expired
	OnExpired func(c *gin.Context, sessionID string)
}

// AuthMiddleware loads the sealed session cookie and binds the user's backend
// credentials to the request context. Missing, tampered, or expired sessions
// are cleared and sent to the login page.
func AuthMiddleware(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := cfg.Store.Load(c.Request)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				logging.FromContext(c.Request.Context()).Warn("rejected session cookie", "error", err)
				cfg.Store.Clear(c.Writer)
			}
			deny(c, cfg.Store, "")
			return
		}

		if sess.Expired(time.Now(), cfg.TokenSkew) {
			if cfg.OnExpired != nil {
				cfg.OnExpired(c, sess.ID)
			}
			cfg.Store.Clear(c.Writer)
			deny(c, cfg.Store, "Your session has expired, please sign in again")
			return
		}

		c.Set(sessionKey, sess)
		c.Set(userIDKey, sess.User.ID)

		cred := service.Credentials{SessionID: sess.ID, BaseURL: sess.BaseURL, Token: sess.Token}
		ctx := cred.Bind(c.Request.Context())
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", sess.User.ID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// deny answers an unauthenticated request: JSON callers get a 401, browsers a redirect.
func deny(c *gin.Context, store *session.Store, message string) {
	if wantsJSON(c) {
		if message == "" {
			message = "Authentication required"
		}
		response.Abort(c, http.StatusUnauthorized, message)
		return
	}
	if message != "" {
		store.SetFlash(c.Writer, session.Flash{Kind: "warning", Message: message})
	}
	c.Redirect(http.StatusSeeOther, LoginPath)
	c.Abort()
}

// RequireRole allows only users whose role satisfies allowed.
func RequireRole(allowed func(enum.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !allowed(sess.User.Role) {
			if wantsJSON(c) {
				response.Abort(c, http.StatusForbidden, "You are not allowed to perform this action")
				return
			}
			c.Redirect(http.StatusSeeOther, UnauthorizedPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin allows admins and super admins.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(enum.Role.IsAdmin)
}

// RequireCashier allows cashiers.
func RequireCashier() gin.HandlerFunc {
	return RequireRole(enum.Role.IsCashier)
}

// GetSession returns the session loaded by AuthMiddleware.
func GetSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}
