package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/app"
	"tasktracker/internal/model"
	"tasktracker/internal/pkg/jwtutil"
	"tasktracker/internal/transport/http/response"
)

const (
	ContextUserKey   = "session_user"
	ContextClaimsKey = "session_claims"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, *jwtutil.Claims, error)
}

// SessionGuard resolves the bearer token to a stored user and aborts with
// 401 when that fails.
func SessionGuard(auth Authenticator, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		user, claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, app.ErrUnauthenticated) {
				response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			} else {
				log.ErrorContext(c.Request.Context(), "authenticate request failed", "error", err)
				response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "authentication unavailable")
			}
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

func CurrentClaims(c *gin.Context) (*jwtutil.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwtutil.Claims)
	return claims, ok && claims != nil
}
