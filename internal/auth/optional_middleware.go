package auth

import (
	"guild/backend/internal/database"
	"guild/backend/internal/models"
	"guild/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// OptionalAuthMiddleware inspects for a token and sets the userID if present and valid,
// but does not fail if the token is missing or invalid.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if userID, err := jwt.ParseToken(tokenString); err == nil {
				var count int64
				err := database.DB.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error
				switch {
				case err != nil:
					// Served anonymously; the request logger reports the lookup failure.
					_ = c.Error(err)
				case count > 0:
					c.Set(ContextUserID, userID)
				}
			}
		}
		c.Next()
	}
}
