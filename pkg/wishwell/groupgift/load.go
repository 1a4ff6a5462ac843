// Package groupgift builds the view a member gets of a group: every other
// member with their visible gifts and what may be said about each claim.
package groupgift

import (
	"context"
	"errors"

	"github.com/mikepea/wishwell/pkg/wishwell/access"
	"github.com/mikepea/wishwell/pkg/wishwell/claims"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("group not found")

// Gift is a co-member's gift with its concealed claim
type Gift struct {
	models.Gift
	ClaimStatus claims.View `json:"claim"`
}

// Member is a co-member and the gifts the viewer may see
type Member struct {
	GroupMemberID uint        `json:"group_member_id"`
	UserID        string      `json:"user_id"`
	IsOwner       bool        `json:"is_owner"`
	User          models.User `json:"user"`
	Gifts         []Gift      `json:"gifts"`
}

// ClaimedCount is the number of the member's gifts that are claimed or purchased
func (m Member) ClaimedCount() int {
	n := 0
	for _, g := range m.Gifts {
		if g.ClaimStatus.Status != claims.StateAvailable {
			n++
		}
	}
	return n
}

// View is a group as seen by one of its members
type View struct {
	Group   models.Group `json:"group"`
	Members []Member     `json:"members"`
}

// Member returns the member with userID, if present
func (v *View) Member(userID string) (Member, bool) {
	for _, m := range v.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// Load builds viewer's view of groupID. Groups the viewer does not belong to
// are reported as ErrNotFound.
func Load(ctx context.Context, db *gorm.DB, viewer string, groupID uint) (*View, error) {
	db = db.WithContext(ctx)

	ok, err := access.IsMember(db, groupID, viewer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	var group models.Group
	if err := db.Preload("Owner").First(&group, groupID).Error; err != nil {
		if access.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rows []models.GroupMember
	if err := db.Preload("User").
		Where("group_id = ?", groupID).
		Order("group_member_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	inGroup := make(map[string]bool, len(rows))
	var others []string
	for _, r := range rows {
		inGroup[r.UserID] = true
		if r.UserID != viewer {
			others = append(others, r.UserID)
		}
	}

	var gifts []models.Gift
	if len(others) > 0 {
		if err := db.Preload("Claim.Claimant").
			Where("user_id IN ? AND is_private = ? AND is_archived = ?", others, false, false).
			Order("gift_id").
			Find(&gifts).Error; err != nil {
			return nil, err
		}
	}

	byUser := make(map[string][]Gift)
	for _, g := range gifts {
		byUser[g.UserID] = append(byUser[g.UserID], Gift{
			Gift:        g,
			ClaimStatus: claims.Conceal(viewer, g.Claim, inGroup),
		})
	}

	view := &View{Group: group, Members: make([]Member, 0, len(others))}
	for _, r := range rows {
		if r.UserID == viewer {
			continue
		}
		m := Member{
			GroupMemberID: r.GroupMemberID,
			UserID:        r.UserID,
			IsOwner:       r.IsOwner,
			Gifts:         byUser[r.UserID],
		}
		if r.User != nil {
			m.User = *r.User
		}
		if m.Gifts == nil {
			m.Gifts = []Gift{}
		}
		view.Members = append(view.Members, m)
	}
	return view, nil
}
