package models

import "time"

// GroupInvite is a pending invitation. Accepting it replaces it with a GroupMember.
type GroupInvite struct {
	GroupInviteID uint      `gorm:"primaryKey" json:"group_invite_id"`
	CreatedAt     time.Time `json:"created_at"`
	GroupID       uint      `gorm:"not null;uniqueIndex:idx_group_invite" json:"group_id"`
	UserID        string    `gorm:"not null;size:64;uniqueIndex:idx_group_invite;index" json:"user_id"`

	// Relationships
	Group *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	User  *User  `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}
