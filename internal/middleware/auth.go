package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/skillora/skillora-server/internal/features/user"
	"github.com/skillora/skillora-server/internal/utils/jwt"
	"github.com/skillora/skillora-server/pkg/response"
	"github.com/skillora/skillora-server/pkg/types"
)

const userContextKey = "user"

var (
	db        *gorm.DB
	jwtSecret string
	logger    *slog.Logger
)

// Initialize wires the package-level dependencies used by the auth
// middleware. Must be called once before registering routes.
func Initialize(database *gorm.DB, secret string, log *slog.Logger) {
	db = database
	jwtSecret = secret
	logger = log
}

// AuthenticateToken verifies the Bearer token and loads the corresponding
// user into the request context.
func AuthenticateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c)
		if !ok {
			response.Error(c, 401, "No token provided", nil)
			c.Abort()
			return
		}

		claims, err := jwt.VerifyToken(token, jwtSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.Error(c, 401, "Token expired", nil)
			} else {
				response.Error(c, 401, "Invalid token", nil)
			}
			c.Abort()
			return
		}

		usr, err := user.Get(db, claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				response.Error(c, 401, "Invalid token", nil)
			} else {
				response.ErrorWithLog(logger, c, 500, "Failed to authenticate request", err)
			}
			c.Abort()
			return
		}

		c.Set(userContextKey, usr)
		c.Next()
	}
}

// AuthorizeRoles rejects requests whose authenticated user does not hold
// one of the given roles. It assumes AuthenticateToken ran earlier in the
// chain.
func AuthorizeRoles(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, ok := GetUserFromContext(c)
		if !ok {
			response.Error(c, 401, "No token provided", nil)
			c.Abort()
			return
		}

		for _, role := range roles {
			if usr.Role == role {
				c.Next()
				return
			}
		}

		response.Error(c, 403, "Access denied: insufficient permissions", nil)
		c.Abort()
	}
}

// RequireRoles composes authentication and role authorization.
func RequireRoles(roles ...types.Role) []gin.HandlerFunc {
	return []gin.HandlerFunc{AuthenticateToken(), AuthorizeRoles(roles...)}
}

// GetUserFromContext returns the authenticated user set by AuthenticateToken.
func GetUserFromContext(c *gin.Context) (user.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return user.User{}, false
	}
	usr, ok := value.(user.User)
	return usr, ok
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
