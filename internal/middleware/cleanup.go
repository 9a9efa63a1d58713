package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/praesidion/wpbr-intake/internal/models"
	appErrors "github.com/praesidion/wpbr-intake/pkg/errors"
	"github.com/praesidion/wpbr-intake/pkg/response"
)

type sessionAbandoner interface {
	Abandon(ctx context.Context, principal models.Principal) error
}

// SessionCleanup recovers from panics in the submission routes and destroys
// the caller's live session, so a crashed request never leaves staged files
// or half-built documents behind.
func SessionCleanup(sessions sessionAbandoner, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in submission request",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path))
				if principal, ok := PrincipalFromContext(c); ok {
					if err := sessions.Abandon(c.Request.Context(), principal); err != nil {
						logger.Error("session cleanup after panic failed",
							zap.String("owner_id", principal.UserID), zap.Error(err))
					}
				}
				response.Error(c, appErrors.ErrInternal)
				c.Abort()
			}
		}()
		c.Next()
	}
}
