package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"guild/backend/internal/apperr"
	"guild/backend/internal/auth"
	"guild/backend/internal/database"
	"guild/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	minRating = 1
	maxRating = 5
)

// region --- DTOs ---

// CreateReviewInput defines the structure for creating a review.
// Rating is decoded as a number so that fractional values can be rejected.
type CreateReviewInput struct {
	GameID string   `json:"gameId" binding:"required" example:"5f0c6a3e-8d4b-4c56-9a51-2f1f3c2f7b10"`
	Text   string   `json:"text" binding:"required" example:"great"`
	Rating *float64 `json:"rating" binding:"required" example:"5"`
}

// UpdateReviewInput defines the structure for updating a review.
type UpdateReviewInput struct {
	Text   *string  `json:"text" example:"still great"`
	Rating *float64 `json:"rating" example:"4"`
}

// ReviewResponse is the public view of a review.
type ReviewResponse struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName" example:"Test User"`
	Handle    string    `json:"handle" example:"testuser"`
	AvatarURL *string   `json:"avatarUrl"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating" example:"5"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newReviewResponse(review models.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		GameID:    review.GameID,
		UserID:    review.UserID,
		UserName:  review.User.PublicName(),
		Handle:    review.User.Username,
		AvatarURL: review.User.AvatarURL,
		Text:      review.Text,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}

// endregion

// parseRating accepts whole numbers from 1 to 5.
func parseRating(value float64) (int, error) {
	if value != math.Trunc(value) || value < minRating || value > maxRating {
		return 0, apperr.NewValidation("Rating must be an integer between 1 and 5")
	}
	return int(value), nil
}

// refreshRating recomputes the game's aggregate after a committed review
// change. It outlives a cancelled request so the aggregate is not left stale.
func refreshRating(c *gin.Context, gameID string) {
	ratings.Refresh(context.WithoutCancel(c.Request.Context()), gameID)
}

// loadOwnedReview fetches a review and checks that the caller wrote it.
func loadOwnedReview(c *gin.Context, db *gorm.DB) (models.Review, bool) {
	var review models.Review
	if err := db.First(&review, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NewNotFound("Review not found"))
			return review, false
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve review"))
		return review, false
	}

	if review.UserID != auth.CurrentUserID(c) {
		respondError(c, apperr.NewForbidden("You can only modify your own reviews"))
		return review, false
	}
	return review, true
}

// GetReviewsByGame godoc
// @Summary      List reviews of a game
// @Description  Lists a game's reviews, newest first.
// @Tags         reviews
// @Produce      json
// @Param        gameId  path      string  true  "Game ID"
// @Success      200     {array}   ReviewResponse
// @Failure      404     {object}  ErrorResponse "Game not found"
// @Router       /reviews/games/{gameId} [get]
func GetReviewsByGame(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())
	gameID := c.Param("gameId")

	var count int64
	if err := db.Model(&models.Game{}).Where("id = ?", gameID).Count(&count).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve reviews"))
		return
	}
	if count == 0 {
		respondError(c, apperr.NewNotFound("Game not found"))
		return
	}

	var reviews []models.Review
	err := db.Preload("User").
		Where("game_id = ?", gameID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve reviews"))
		return
	}

	responses := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, newReviewResponse(review))
	}
	c.JSON(http.StatusOK, responses)
}

// CreateReview godoc
// @Summary      Review a game
// @Description  Creates the caller's review of a game and updates the game's rating.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateReviewInput true "Review"
// @Success      201  {object}  ReviewResponse
// @Failure      400  {object}  ErrorResponse "Invalid rating"
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Failure      409  {object}  ErrorResponse "You have already reviewed this game"
// @Router       /reviews [post]
func CreateReview(c *gin.Context) {
	var input CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "gameId, text and rating are required")
		return
	}

	rating, err := parseRating(*input.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		badRequest(c, "Review text cannot be empty")
		return
	}

	db := database.DB.WithContext(c.Request.Context())

	var user models.User
	if err := db.First(&user, "id = ?", auth.CurrentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NewNotFound("User not found"))
			return
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to create review"))
		return
	}

	var game models.Game
	if err := db.Select("id").First(&game, "id = ?", input.GameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NewNotFound("Game not found"))
			return
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to create review"))
		return
	}

	var existing int64
	if err := db.Model(&models.Review{}).Where("game_id = ? AND user_id = ?", game.ID, user.ID).Count(&existing).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to create review"))
		return
	}
	if existing > 0 {
		respondError(c, apperr.NewConflict("You have already reviewed this game"))
		return
	}

	review := models.Review{GameID: game.ID, UserID: user.ID, Text: text, Rating: rating}
	if err := db.Omit("Game", "User").Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, apperr.NewConflict("You have already reviewed this game"))
			return
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to create review"))
		return
	}

	refreshRating(c, review.GameID)

	review.User = user
	c.JSON(http.StatusCreated, newReviewResponse(review))
}

// UpdateReview godoc
// @Summary      Update a review
// @Description  Changes the text and/or rating of the caller's review and updates the game's rating.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Review ID"
// @Param        input body      UpdateReviewInput  true  "Changes"
// @Success      200   {object}  ReviewResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Not the owner"
// @Failure      404   {object}  ErrorResponse "Review not found"
// @Router       /reviews/{id} [put]
func UpdateReview(c *gin.Context) {
	var input UpdateReviewInput
	if !bindJSON(c, &input) {
		return
	}

	db := database.DB.WithContext(c.Request.Context())

	review, ok := loadOwnedReview(c, db)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Rating != nil {
		rating, err := parseRating(*input.Rating)
		if err != nil {
			respondError(c, err)
			return
		}
		updates["rating"] = rating
	}
	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if text == "" {
			badRequest(c, "Review text cannot be empty")
			return
		}
		updates["text"] = text
	}

	if len(updates) > 0 {
		if err := db.Model(&review).Updates(updates).Error; err != nil {
			respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to update review"))
			return
		}
	}

	refreshRating(c, review.GameID)

	if err := db.Preload("User").First(&review, "id = ?", review.ID).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve review"))
		return
	}
	c.JSON(http.StatusOK, newReviewResponse(review))
}

// DeleteReview godoc
// @Summary      Delete a review
// @Description  Removes the caller's review and updates the game's rating.
// @Tags         reviews
// @Security     BearerAuth
// @Param        id   path  string  true  "Review ID"
// @Success      204  "No Content"
// @Failure      403  {object}  ErrorResponse "Not the owner"
// @Failure      404  {object}  ErrorResponse "Review not found"
// @Router       /reviews/{id} [delete]
func DeleteReview(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())

	review, ok := loadOwnedReview(c, db)
	if !ok {
		return
	}

	if err := db.Delete(&models.Review{}, "id = ?", review.ID).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to delete review"))
		return
	}

	refreshRating(c, review.GameID)

	c.Status(http.StatusNoContent)
}
