package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"guild/backend/internal/apperr"
	"guild/backend/internal/auth"
	"guild/backend/internal/database"
	"guild/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// region --- DTOs ---

// GameInput defines the structure for creating a game.
type GameInput struct {
	Title              string   `json:"title" binding:"required" example:"Hollow Knight"`
	Description        *string  `json:"description"`
	Images             []string `json:"images" binding:"required,min=1"`
	ReleaseDate        *string  `json:"releaseDate" example:"2017-02-24"`
	DeveloperPublisher *string  `json:"developerPublisher"`
	Platforms          *string  `json:"platforms"`
	Genres             *string  `json:"genres"`
}

// GameResponse is the public view of a game.
type GameResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        *string   `json:"description"`
	Images             []string  `json:"images"`
	ReleaseDate        *string   `json:"releaseDate"`
	DeveloperPublisher *string   `json:"developerPublisher"`
	Platforms          *string   `json:"platforms"`
	Genres             *string   `json:"genres"`
	RatingValue        float64   `json:"ratingValue" example:"4.5"`
	ReviewsCount       int64     `json:"reviewsCount" example:"2"`
	IsFavorite         *bool     `json:"isFavorite,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// RecalculateResponse reports a reconciliation pass over all games.
type RecalculateResponse struct {
	Message        string `json:"message"`
	GamesProcessed int    `json:"gamesProcessed"`
}

func newGameResponse(game models.Game) GameResponse {
	images := []string(game.Images)
	if images == nil {
		images = []string{}
	}
	return GameResponse{
		ID:                 game.ID,
		Title:              game.Title,
		Description:        game.Description,
		Images:             images,
		ReleaseDate:        game.ReleaseDate,
		DeveloperPublisher: game.DeveloperPublisher,
		Platforms:          game.Platforms,
		Genres:             game.Genres,
		RatingValue:        game.RatingValue,
		ReviewsCount:       game.ReviewsCount,
		CreatedAt:          game.CreatedAt,
		UpdatedAt:          game.UpdatedAt,
	}
}

func newGameResponses(games []models.Game) []GameResponse {
	responses := make([]GameResponse, 0, len(games))
	for _, game := range games {
		responses = append(responses, newGameResponse(game))
	}
	return responses
}

// endregion

// region --- Public Handlers ---

// GetGames godoc
// @Summary      List games
// @Description  Retrieves a paginated list of games, most recently added first.
// @Tags         games
// @Produce      json
// @Param        page   query     int  false  "Page number" default(1)
// @Param        limit  query     int  false  "Items per page" default(10)
// @Success      200    {object}  PaginatedResponse[GameResponse]
// @Failure      500    {object}  ErrorResponse
// @Router       /games [get]
func GetGames(c *gin.Context) {
	page, limit := parsePagination(c)

	query := database.DB.WithContext(c.Request.Context()).
		Model(&models.Game{}).
		Order("created_at DESC").
		Order("id ASC")

	result, err := Paginate[models.Game](query, page, limit)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve games"))
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newGameResponses(result.Data), result.Meta.TotalItems, page, limit))
}

// SearchGames godoc
// @Summary      Search games
// @Description  Case-insensitive substring search on the game title.
// @Tags         games
// @Produce      json
// @Param        q    query     string  false  "Search term"
// @Success      200  {array}   GameResponse
// @Router       /games/search [get]
func SearchGames(c *gin.Context) {
	term := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if term == "" {
		c.JSON(http.StatusOK, []GameResponse{})
		return
	}

	var games []models.Game
	err := database.DB.WithContext(c.Request.Context()).
		Where("LOWER(title) LIKE ?", "%"+term+"%").
		Order("title ASC").
		Limit(maxPageSize).
		Find(&games).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to search games"))
		return
	}

	c.JSON(http.StatusOK, newGameResponses(games))
}

// GetNewGames godoc
// @Summary      Newest games
// @Description  Lists games by release date, most recent first.
// @Tags         games
// @Produce      json
// @Param        limit  query     int  false  "Number of games" default(10)
// @Success      200    {array}   GameResponse
// @Router       /games/new [get]
func GetNewGames(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var games []models.Game
	err = database.DB.WithContext(c.Request.Context()).
		Order("release_date IS NULL").
		Order("release_date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&games).Error
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve games"))
		return
	}

	c.JSON(http.StatusOK, newGameResponses(games))
}

// GetGameByID godoc
// @Summary      Get a game
// @Description  Retrieves one game. Authenticated callers also get isFavorite.
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game ID"
// @Success      200  {object}  GameResponse
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGameByID(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())

	var game models.Game
	if err := db.First(&game, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NewNotFound("Game not found"))
			return
		}
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve game"))
		return
	}

	response := newGameResponse(game)
	if userID := auth.CurrentUserID(c); userID != "" {
		var count int64
		if err := db.Model(&models.Favorite{}).Where("user_id = ? AND game_id = ?", userID, game.ID).Count(&count).Error; err != nil {
			respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to retrieve game"))
			return
		}
		isFavorite := count > 0
		response.IsFavorite = &isFavorite
	}

	c.JSON(http.StatusOK, response)
}

// endregion

// region --- Authenticated Handlers ---

// CreateGame godoc
// @Summary      Create a game
// @Description  Adds a game to the catalog. Title and at least one image are required.
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /games [post]
func CreateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Title and at least one image are required")
		return
	}

	title := strings.TrimSpace(input.Title)
	images := make([]string, 0, len(input.Images))
	for _, image := range input.Images {
		if image = strings.TrimSpace(image); image != "" {
			images = append(images, image)
		}
	}
	if title == "" || len(images) == 0 {
		badRequest(c, "Title and at least one image are required")
		return
	}

	game := models.Game{
		Title:              title,
		Description:        optionalString(input.Description),
		Images:             datatypes.NewJSONSlice(images),
		ReleaseDate:        optionalString(input.ReleaseDate),
		DeveloperPublisher: optionalString(input.DeveloperPublisher),
		Platforms:          optionalString(input.Platforms),
		Genres:             optionalString(input.Genres),
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&game).Error; err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to create game"))
		return
	}

	c.JSON(http.StatusCreated, newGameResponse(game))
}

// endregion

// region --- Admin Handlers ---

// RecalculateGameRatings godoc
// @Summary      Recalculate all game ratings
// @Description  Recomputes ratingValue and reviewsCount of every game from its reviews.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  RecalculateResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /games/recalculate-ratings [post]
func RecalculateGameRatings(c *gin.Context) {
	processed, err := ratings.RecomputeAll(c.Request.Context())
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Internal, "Failed to recalculate ratings"))
		return
	}

	c.JSON(http.StatusOK, RecalculateResponse{
		Message:        "Ratings recalculated successfully",
		GamesProcessed: processed,
	})
}

// endregion
