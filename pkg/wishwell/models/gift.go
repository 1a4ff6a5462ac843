package models

import (
	"time"
)

// Priority ranks how much a user wants a gift
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// Gift is an item on a user's wish list.
// Co-members only see gifts that are neither private nor archived.
type Gift struct {
	GiftID      uint      `gorm:"primaryKey" json:"gift_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      string    `gorm:"not null;size:64;index" json:"user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	WebLink     string    `json:"web_link"`
	Priority    Priority  `gorm:"not null;default:2" json:"priority"`
	IsPrivate   bool      `gorm:"not null;default:false;index" json:"is_private"`
	IsArchived  bool      `gorm:"not null;default:false" json:"is_archived"`

	// Relationships. Claim is never serialized: the owner must not see it.
	User  *User        `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Claim *ClaimedGift `gorm:"foreignKey:GiftID;references:GiftID" json:"-"`
}

// VisibleToOthers reports whether co-members may see the gift
func (g *Gift) VisibleToOthers() bool {
	return !g.IsPrivate && !g.IsArchived
}
