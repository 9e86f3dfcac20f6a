package models

import "time"

// Chat is a named conversation between a set of users.
type Chat struct {
	Base
	Name            string  `gorm:"size:255;not null"`
	LastMessage     *string
	LastMessageTime *time.Time
	UnreadCount     int `gorm:"not null;default:0"`

	Participants []User `gorm:"many2many:chat_participants;constraint:OnDelete:CASCADE;"`
}

// HasParticipant reports whether userID takes part in the chat.
// Participants must be preloaded.
func (c Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
