package models

// Favorite marks a game as a favorite of a user.
type Favorite struct {
	Base
	UserID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_game"`
	GameID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_game"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}
