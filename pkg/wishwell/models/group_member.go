package models

import "time"

// GroupMember links a user to a group. There is at most one row per (group, user).
type GroupMember struct {
	GroupMemberID uint      `gorm:"primaryKey" json:"group_member_id"`
	CreatedAt     time.Time `json:"created_at"`
	GroupID       uint      `gorm:"not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID        string    `gorm:"not null;size:64;uniqueIndex:idx_group_member;index" json:"user_id"`
	IsOwner       bool      `gorm:"not null;default:false" json:"is_owner"`

	// Relationships
	Group *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	User  *User  `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}
