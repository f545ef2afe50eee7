package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	perrors "jobboard-portal/internal/common/errors"
	gateway "jobboard-portal/internal/common/http"
	"jobboard-portal/internal/common/logger"
)

const (
	ctxSessionID = "portal.sid"
	ctxToken     = "portal.token"
)

// Tokens is the part of TokenStore the middleware needs.
type Tokens interface {
	Token(ctx context.Context, sid string) (string, error)
}

type CookieConfig struct {
	Name   string
	Secure bool
}

// Middleware ensures every browser carries a session cookie, loads the session's
// token and enforces the guard with a full redirect. Handlers behind it can read
// the session id and token, and the request context carries the token for the
// gateway.
func Middleware(guard *Guard, tokens Tokens, cookie CookieConfig, log logger.Logger) gin.HandlerFunc {
	log = log.WithFields(map[string]interface{}{"component": "auth_middleware"})

	return func(c *gin.Context) {
		sid, err := c.Cookie(cookie.Name)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookie.Name, sid, 0, "/", "", cookie.Secure, true)
		}

		token, err := tokens.Token(c.Request.Context(), sid)
		if err != nil {
			log.Error("session lookup failed", map[string]interface{}{
				"path":      c.Request.URL.Path,
				"errorCode": perrors.CodeOf(err),
				"error":     err.Error(),
			})
			c.String(http.StatusServiceUnavailable, perrors.UserMessage(err, "session unavailable"))
			c.Abort()
			return
		}

		if redirect, ok := guard.Check(token, c.Request.URL.Path); !ok {
			c.Redirect(http.StatusFound, redirect)
			c.Abort()
			return
		}

		c.Set(ctxSessionID, sid)
		c.Set(ctxToken, token)
		c.Request = c.Request.WithContext(gateway.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

// SessionID returns the browser session id set by Middleware.
func SessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

// Token returns the session token set by Middleware, "" when signed out.
func Token(c *gin.Context) string {
	return c.GetString(ctxToken)
}
