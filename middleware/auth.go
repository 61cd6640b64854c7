package middleware

import (
	"errors"
	"net/http"
	"strings"

	"prostore-backend/models"
	"prostore-backend/utils"

	"github.com/gin-gonic/gin"
)

const (
	// AuthCookieName holds the signed session token for browser clients.
	AuthCookieName = "session_token"

	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextUserName = "user_name"
)

var errNoToken = errors.New("no token")

// bearerToken reads the token from the Authorization header, falling back to
// the session cookie.
func bearerToken(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", errNoToken
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserRole, claims.Role)
	c.Set(ContextUserName, claims.Name)
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if errors.Is(err, errNoToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the user when a valid token is present and lets
// anonymous requests through untouched.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := bearerToken(c); err == nil {
			if claims, err := utils.ValidateToken(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRole)
		if !exists || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
