// Package router assembles the HTTP surface of the API.
package router

import (
	"net/http"

	_ "guild/backend/docs" // registers the swagger document
	"guild/backend/internal/auth"
	"guild/backend/internal/database"
	"guild/backend/internal/handler"
	"guild/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Setup builds the engine with every route. database.DB must be connected.
func Setup(logger *zap.Logger) *gin.Engine {
	handler.Setup(database.DB, logger)

	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
			authRoutes.POST("/change-password", auth.AuthMiddleware(), handler.ChangePassword)
		}

		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.PUT("/me", handler.UpdateMe)
			userRoutes.GET("/:id", handler.GetUserByID)

			userRoutes.POST("/:id/follow", handler.FollowUser)
			userRoutes.POST("/:id/unfollow", handler.UnfollowUser)
			userRoutes.GET("/:id/followers", handler.GetFollowers)
			userRoutes.GET("/:id/following", handler.GetFollowing)
		}

		gameRoutes := apiV1.Group("/games")
		{
			gameRoutes.GET("", handler.GetGames)
			gameRoutes.GET("/search", handler.SearchGames)
			gameRoutes.GET("/new", handler.GetNewGames)
			gameRoutes.GET("/:id", auth.OptionalAuthMiddleware(), handler.GetGameByID)
			gameRoutes.POST("", auth.AuthMiddleware(), handler.CreateGame)
			gameRoutes.POST("/recalculate-ratings", auth.AuthMiddleware(), auth.AdminMiddleware(), handler.RecalculateGameRatings)
		}

		reviewRoutes := apiV1.Group("/reviews")
		{
			reviewRoutes.GET("/games/:gameId", handler.GetReviewsByGame)

			protected := reviewRoutes.Group("", auth.AuthMiddleware())
			protected.POST("", handler.CreateReview)
			protected.PUT("/:id", handler.UpdateReview)
			protected.DELETE("/:id", handler.DeleteReview)
		}

		favoriteRoutes := apiV1.Group("/favorites")
		favoriteRoutes.Use(auth.AuthMiddleware())
		{
			favoriteRoutes.GET("", handler.GetFavorites)
			favoriteRoutes.POST("", handler.AddFavorite)
			favoriteRoutes.GET("/:gameId/status", handler.GetFavoriteStatus)
			favoriteRoutes.DELETE("/:gameId", handler.RemoveFavorite)
		}

		chatRoutes := apiV1.Group("/chats")
		chatRoutes.Use(auth.AuthMiddleware())
		{
			chatRoutes.GET("", handler.GetChats)
			chatRoutes.POST("", handler.CreateChat)
			chatRoutes.GET("/:id", handler.GetChatByID)
			chatRoutes.GET("/:id/messages", handler.GetChatMessages)
			chatRoutes.POST("/:id/messages", handler.SendMessage)
			chatRoutes.GET("/:id/stream", handler.StreamChat)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return router
}
