package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/treasuryops/tbo_backend/internal/core/domain"
)

// principalKey is the key used to store the authenticated principal in the
// request context.
const principalKey = contextKey("principal")

// GetPrincipalFromContext retrieves the authenticated principal from the Gin
// context. It returns the principal and a boolean indicating if it was found.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	if val := c.Request.Context().Value(principalKey); val != nil {
		if p, ok := val.(domain.Principal); ok {
			return p, true
		}
	}
	return domain.Principal{}, false
}

// AddPrincipalToCtx stores a principal in a standard context.
func AddPrincipalToCtx(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipalFromCtx retrieves the authenticated principal from a standard
// context, for code paths that run below the Gin layer.
func GetPrincipalFromCtx(ctx context.Context) (domain.Principal, bool) {
	if p, ok := ctx.Value(principalKey).(domain.Principal); ok {
		return p, true
	}
	return domain.Principal{}, false
}
