package handler

import (
	"errors"
	"net/http"
	"strings"

	"guild/backend/internal/apperr"
	"guild/backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err as {"error": message}. Unclassified errors become a
// generic 500; their cause is logged and, in development only, echoed as "detail".
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Wrap(err, apperr.Internal, "Internal server error")
	}

	body := gin.H{"error": appErr.Message}
	if appErr.Kind == apperr.Internal {
		_ = c.Error(err)
		logger.Error(appErr.Message,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		if config.AppConfig != nil && config.AppConfig.IsDevelopment() {
			body["detail"] = err.Error()
		}
	}

	c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}

func normalizeIdentity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// optionalString maps an absent or blank value to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
