package models

import "time"

// Status is the claim state stored on a ClaimedGift row
type Status int

const (
	StatusClaimed   Status = 1
	StatusPurchased Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusClaimed:
		return "claimed"
	case StatusPurchased:
		return "purchased"
	}
	return "unknown"
}

// ClaimedGift is the exclusive reservation of a gift by a co-member.
// The unique index on GiftID makes claiming exclusive.
type ClaimedGift struct {
	ClaimedGiftID uint      `gorm:"primaryKey" json:"claimed_gift_id"`
	CreatedAt     time.Time `json:"created_at"`
	GiftID        uint      `gorm:"not null;uniqueIndex" json:"gift_id"`
	ClaimedBy     string    `gorm:"not null;size:64;index" json:"claimed_by"`
	StatusID      Status    `gorm:"not null" json:"status_id"`
	ModifiedAt    time.Time `gorm:"not null;index" json:"modified_at"`

	// Relationships
	Gift     *Gift `gorm:"foreignKey:GiftID;references:GiftID" json:"gift,omitempty"`
	Claimant *User `gorm:"foreignKey:ClaimedBy;references:UserID" json:"-"`
}
