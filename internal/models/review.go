package models

// Review is a user's rating of a game. A user reviews a game at most once.
type Review struct {
	Base
	GameID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_game_user"`
	UserID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_game_user"`
	Text   string `gorm:"not null"`
	Rating int    `gorm:"not null"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}
