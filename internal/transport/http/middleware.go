package http

import (
	"strings"

	"elearning-quiz-service/internal/auth"
	"elearning-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	ctxUsername = "username"
	ctxRole     = "role"
)

// TokenParser verifies access tokens.
type TokenParser interface {
	ParseAccess(token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer access token.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if header == "" || raw == header {
			abortWith(c, domain.NewError(domain.CodeUnauthorized))
			return
		}
		claims, err := tokens.ParseAccess(raw)
		if err != nil {
			abortWith(c, domain.NewError(domain.CodeUnauthorized))
			return
		}
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != string(domain.RoleAdmin) {
			abortWith(c, domain.NewError(domain.CodeUnauthorized))
			return
		}
		c.Next()
	}
}

func username(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
