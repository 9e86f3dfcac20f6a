package models

// Message represents a chat message.
type Message struct {
	Base
	ChatID string `gorm:"type:varchar(36);not null;index"`
	UserID string `gorm:"type:varchar(36);not null"`
	Text   string `gorm:"not null"`

	Chat Chat `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID"`
}
