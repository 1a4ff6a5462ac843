package models

import "time"

// User is the profile row for an identity-provider account.
// UserID is the provider's opaque subject and never changes.
type User struct {
	UserID         string    `gorm:"primaryKey;size:64" json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	DisplayName    string    `gorm:"not null" json:"display_name"`
	AvatarURL      *string   `json:"avatar_url"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	TelegramChatID *int64    `json:"-"`
}
