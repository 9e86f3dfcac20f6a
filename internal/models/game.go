package models

import "gorm.io/datatypes"

// Game represents a game in the catalog.
// RatingValue and ReviewsCount are derived from the game's reviews and are
// written only by the rating aggregator.
type Game struct {
	Base
	Title              string                      `gorm:"size:255;not null;index"`
	Description        *string
	Images             datatypes.JSONSlice[string] `gorm:"not null"`
	ReleaseDate        *string                     `gorm:"size:64;index"`
	DeveloperPublisher *string                     `gorm:"size:255"`
	Platforms          *string                     `gorm:"size:255"`
	Genres             *string                     `gorm:"size:255"`
	RatingValue        float64                     `gorm:"not null;default:0;index"`
	ReviewsCount       int64                       `gorm:"not null;default:0"`
}
