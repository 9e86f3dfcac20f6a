package handler

import (
	"guild/backend/internal/rating"
	"guild/backend/internal/relation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	logger    = zap.NewNop()
	ratings   *rating.Aggregator
	relations *relation.Manager
)

// Setup wires the collaborators the handlers share. It must run before the
// router serves requests.
func Setup(db *gorm.DB, l *zap.Logger) {
	logger = l
	ratings = rating.NewAggregator(db, l)
	relations = relation.NewManager(db)
}

// region --- Common DTOs ---

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// MessageResponse represents a plain confirmation.
type MessageResponse struct {
	Message string `json:"message" example:"Operation completed"`
}

// endregion
