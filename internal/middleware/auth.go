package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/types"
)

type AuthenticatedUser struct {
	ID    uint           `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  types.UserRole `json:"role"`
}

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		if !authenticate(ctx, authenticator, authHeader) {
			return
		}
		ctx.Next()
	}
}

// OptionalAuth attaches the user when a token is sent and lets anonymous requests through.
func OptionalAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader != "" && !authenticate(ctx, authenticator, authHeader) {
			return
		}
		ctx.Next()
	}
}

func authenticate(ctx *gin.Context, authenticator Authenticator, authHeader string) bool {
	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
		return false
	}

	user, err := authenticator.Authenticate(ctx.Request.Context(), parts[1])

	if err != nil {
		ctx.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return false
	}

	ctx.Set(types.ContextUserKey, AuthenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
	return true
}
