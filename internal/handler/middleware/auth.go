package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"treatment-booking/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// TokenValidator is satisfied by *jwt.Service.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
}

const ctxSubjectKey = "subject"

func NewAuthMiddleware(tokenValidator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

// Identity records the bearer token's subject when a valid token is
// present. Requests without one continue anonymously.
func (m *AuthMiddleware) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("token validation failed", "error", err.Error())
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ctxSubjectKey, claims.Subject)
		c.Set("jwt_claims", map[string]any{
			"subject": claims.Subject,
		})
		c.Next()
	}
}

// RequireIdentity must run after Identity.
func (m *AuthMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSubject(c); !ok {
			abortUnauthorized(c, "Access token required")
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": msg, "code": "unauthorized"},
	})
}

func GetSubject(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxSubjectKey)
	if !exists {
		return "", false
	}
	subject, ok := v.(string)
	return subject, ok && subject != ""
}

// SubjectPtr is the caller identity in the form the booking core stores.
func SubjectPtr(c *gin.Context) *string {
	subject, ok := GetSubject(c)
	if !ok {
		return nil
	}
	return &subject
}
