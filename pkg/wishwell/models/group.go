package models

import "time"

// Group is a set of users coordinating gifts around a shared due date.
// OwnerID is fixed at creation.
type Group struct {
	GroupID   uint      `gorm:"primaryKey" json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"not null" json:"name"`
	OwnerID   string    `gorm:"not null;index;size:64" json:"owner_id"`
	DueDate   time.Time `gorm:"index" json:"due_date"`
	ImageURL  *string   `json:"image_url"`

	// Relationships
	Owner   *User         `gorm:"foreignKey:OwnerID;references:UserID" json:"owner,omitempty"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Invites []GroupInvite `gorm:"foreignKey:GroupID" json:"invites,omitempty"`
}
