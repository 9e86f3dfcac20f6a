package auth

import (
	"errors"
	"net/http"
	"strings"

	"guild/backend/internal/database"
	"guild/backend/internal/models"
	"guild/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ContextUserID is the gin context key holding the authenticated user's ID.
const ContextUserID = "userID"

// CurrentUserID returns the authenticated user's ID, or "" when the request is
// anonymous.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// AuthMiddleware rejects requests without a valid bearer token for an existing user.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required. Please provide a valid token."})
			return
		}

		userID, err := jwt.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		var user models.User
		err = database.DB.WithContext(c.Request.Context()).Select("id").First(&user, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}
