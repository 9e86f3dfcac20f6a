// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"fmt"
	"testing"

	"guild/backend/internal/config"
	"guild/backend/internal/database"
	"guild/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	TestSecret   = "test-secret"
	TestPassword = "password123"
)

// SetupDB opens a fresh in-memory SQLite database, installs it as database.DB
// and restores the previous value when the test ends.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared-cache database free of table locks.
	sqlDB.SetMaxOpenConns(1)

	original := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = original
		sqlDB.Close()
	})
	return db
}

// SetupConfig installs a configuration suitable for tests.
func SetupConfig(t *testing.T) {
	t.Helper()

	original := config.AppConfig
	config.AppConfig = &config.Config{
		JWTSecret:       TestSecret,
		JWTExpiresHours: 1,
		AppEnv:          "test",
		ServiceName:     "guild-api-test",
	}
	t.Cleanup(func() { config.AppConfig = original })
}

// CreateUser inserts a user whose password is TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateGame inserts a game with a single image.
func CreateGame(t *testing.T, db *gorm.DB, title string) models.Game {
	t.Helper()

	game := models.Game{
		Title:  title,
		Images: []string{"https://img.example.com/" + title + ".png"},
	}
	require.NoError(t, db.Create(&game).Error)
	return game
}

// CreateReview inserts a review directly, bypassing aggregation.
func CreateReview(t *testing.T, db *gorm.DB, gameID, userID string, rating int) models.Review {
	t.Helper()

	review := models.Review{GameID: gameID, UserID: userID, Text: "review", Rating: rating}
	require.NoError(t, db.Create(&review).Error)
	return review
}
