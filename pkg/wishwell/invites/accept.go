// Package invites handles group invitations: owners invite profiles by
// email, invitees accept or decline.
package invites

import (
	"context"
	"errors"

	"github.com/mikepea/wishwell/pkg/wishwell/access"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

var (
	ErrInviteNotFound = errors.New("invite not found")
	ErrGroupNotFound  = errors.New("that group could not be found")
	ErrAlreadyMember  = errors.New("user is already a member of this group")
)

// Accept turns userID's invite into a membership. The invite is removed in
// the same transaction the member is added. An invite whose group no longer
// exists is deleted and ErrGroupNotFound returned.
func Accept(ctx context.Context, db *gorm.DB, inviteID uint, userID string) (*models.GroupMember, error) {
	var invite models.GroupInvite
	if err := db.WithContext(ctx).Where("group_invite_id = ? AND user_id = ?", inviteID, userID).First(&invite).Error; err != nil {
		if access.IsNotFound(err) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	var member *models.GroupMember
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, invite.GroupID).Error; err != nil {
			if !access.IsNotFound(err) {
				return err
			}
			if err := tx.Delete(&invite).Error; err != nil {
				return err
			}
			return nil
		}

		if err := tx.Delete(&invite).Error; err != nil {
			return err
		}
		m := models.GroupMember{GroupID: invite.GroupID, UserID: userID}
		if err := tx.Create(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return err
		}
		member = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrGroupNotFound
	}
	return member, nil
}
