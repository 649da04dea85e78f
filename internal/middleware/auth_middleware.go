package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/todolistapi/backend/internal/security"
)

// AuthMiddleware handles JWT validation
type AuthMiddleware struct {
	issuer security.TokenIssuer
	logger *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance
func NewAuthMiddleware(issuer security.TokenIssuer, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		issuer: issuer,
		logger: logger,
	}
}

// RequireAuth validates the bearer token and sets userID in the context
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.logger.Warn("⚠️ [Middleware] Missing Authorization header")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required."})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.logger.Warn("⚠️ [Middleware] Invalid Authorization header format")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header format."})
			c.Abort()
			return
		}

		claims, err := m.issuer.ParseAccessToken(parts[1])
		if err != nil {
			m.logger.Warn("⚠️ [Middleware] Invalid token", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token."})
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			m.logger.Warn("⚠️ [Middleware] Missing identity claim")
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing identity claim."})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		m.logger.Debug("✅ [Middleware] Token validated", "user_id", userID)

		c.Next()
	}
}
