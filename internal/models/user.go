package models

// Role values for User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user in the system.
type User struct {
	Base
	Username     string  `gorm:"size:255;uniqueIndex;not null"`
	Email        string  `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	DisplayName  *string `gorm:"size:255"`
	FullName     *string `gorm:"size:255"`
	AvatarURL    *string `gorm:"size:1024"`
	Role         string  `gorm:"size:50;not null;default:'user';index"`
}

// PublicName is the name shown next to a user's reviews and messages.
func (u User) PublicName() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}
