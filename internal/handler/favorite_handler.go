package handler

import (
	"errors"
	"net/http"
	"time"

	"guild/backend/internal/apperr"
	"guild/backend/internal/auth"
	"guild/backend/internal/database"
	"guild/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// FavoriteInput defines the structure for adding a favorite.
type FavoriteInput struct {
	GameID string `json:"gameId" binding:"required"`
}

// FavoriteResponse is a favorite together with its game.
type FavoriteResponse struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	GameID    string       `json:"gameId"`
	Game      GameResponse `json:"game"`
	CreatedAt time.Time    `json:"createdAt"`
}

// FavoriteStatusResponse tells whether a game is among the caller's favorites.
type FavoriteStatusResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

func newFavoriteResponse(favorite models.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:        favorite.ID,
		UserID:    favorite.UserID,
		GameID:    favorite.GameID,
		Game:      newGameResponse(favorite.Game),
		CreatedAt: favorite.CreatedAt,
	}
}

// endregion

// GetFavorites godoc
// @Summary      List favorites
// @Description  Lists the caller's favorite games, most recently added first.
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FavoriteResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /favorites [get]
func GetFavorites(c *gin.Context) {
	var favorites []models.Favorite
	err := database.DB.WithContext(c.Request.Context()).
		Preload("Game").
		Where("user_id = ?", auth.CurrentUserID(c)).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve favorites"))
		return
	}

	responses := make([]FavoriteResponse, 0, len(favorites))
	for _, favorite := range favorites {
		responses = append(responses, newFavoriteResponse(favorite))
	}
	c.JSON(http.StatusOK, responses)
}

// AddFavorite godoc
// @Summary      Add a favorite
// @Description  Adds a game to the caller's favorites.
// @Tags         favorites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body FavoriteInput true "Game"
// @Success      201  {object}  FavoriteResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Failure      409  {object}  ErrorResponse "Game is already in favorites"
// @Router       /favorites [post]
func AddFavorite(c *gin.Context) {
	var input FavoriteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "gameId is required")
		return
	}

	db := database.DB.WithContext(c.Request.Context())
	userID := auth.CurrentUserID(c)

	var game models.Game
	if err := db.First(&game, "id = ?", input.GameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NewNotFound("Game not found"))
			return
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to add favorite"))
		return
	}

	var existing int64
	if err := db.Model(&models.Favorite{}).Where("user_id = ? AND game_id = ?", userID, game.ID).Count(&existing).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to add favorite"))
		return
	}
	if existing > 0 {
		respondError(c, apperr.NewConflict("Game is already in favorites"))
		return
	}

	favorite := models.Favorite{UserID: userID, GameID: game.ID}
	if err := db.Omit("Game", "User").Create(&favorite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, apperr.NewConflict("Game is already in favorites"))
			return
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to add favorite"))
		return
	}

	favorite.Game = game
	c.JSON(http.StatusCreated, newFavoriteResponse(favorite))
}

// RemoveFavorite godoc
// @Summary      Remove a favorite
// @Description  Removes a game from the caller's favorites.
// @Tags         favorites
// @Security     BearerAuth
// @Param        gameId  path  string  true  "Game ID"
// @Success      204  "No Content"
// @Failure      404  {object}  ErrorResponse "Favorite not found"
// @Router       /favorites/{gameId} [delete]
func RemoveFavorite(c *gin.Context) {
	result := database.DB.WithContext(c.Request.Context()).
		Where("user_id = ? AND game_id = ?", auth.CurrentUserID(c), c.Param("gameId")).
		Delete(&models.Favorite{})
	if result.Error != nil {
		respondError(c, apperr.Wrap(result.Error, apperr.Internal, "Failed to remove favorite"))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, apperr.NewNotFound("Favorite not found"))
		return
	}

	c.Status(http.StatusNoContent)
}

// GetFavoriteStatus godoc
// @Summary      Favorite status
// @Description  Reports whether a game is among the caller's favorites.
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        gameId  path      string  true  "Game ID"
// @Success      200     {object}  FavoriteStatusResponse
// @Router       /favorites/{gameId}/status [get]
func GetFavoriteStatus(c *gin.Context) {
	var count int64
	err := database.DB.WithContext(c.Request.Context()).
		Model(&models.Favorite{}).
		Where("user_id = ? AND game_id = ?", auth.CurrentUserID(c), c.Param("gameId")).
		Count(&count).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve favorite status"))
		return
	}

	c.JSON(http.StatusOK, FavoriteStatusResponse{IsFavorite: count > 0})
}
