// Package access holds the row-level visibility rules shared by the
// handlers: who is a member of a group, who owns it, and which users are
// co-members of each other.
package access

import (
	"errors"

	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// IsMember reports whether userID has a GroupMember row in groupID
func IsMember(db *gorm.DB, groupID uint, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

// OwnedGroup loads groupID if userID owns it. It returns
// gorm.ErrRecordNotFound for groups that do not exist or belong to someone else.
func OwnedGroup(db *gorm.DB, groupID uint, userID string) (*models.Group, error) {
	var group models.Group
	if err := db.Where("group_id = ? AND owner_id = ?", groupID, userID).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// SharesGroup reports whether a and b are members of at least one common group
func SharesGroup(db *gorm.DB, a, b string) (bool, error) {
	var count int64
	err := db.Table("group_members AS mine").
		Joins("JOIN group_members AS other ON other.group_id = mine.group_id").
		Where("mine.user_id = ? AND other.user_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

// GroupIDs is a subquery selecting the ids of the groups userID belongs to
func GroupIDs(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
}

// CoMemberIDs is a subquery selecting every user sharing a group with userID,
// excluding userID itself.
func CoMemberIDs(db *gorm.DB, userID string) *gorm.DB {
	return db.Table("group_members AS other").
		Select("DISTINCT other.user_id").
		Joins("JOIN group_members AS mine ON mine.group_id = other.group_id").
		Where("mine.user_id = ? AND other.user_id <> ?", userID, userID)
}

// IsNotFound reports whether err means the row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
