package groups

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/access"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// NewMembersLimit caps the recent-members widget
const NewMembersLimit = 5

// NewMemberResponse is a recent joiner and the group they joined
type NewMemberResponse struct {
	MemberResponse
	GroupID   uint   `json:"group_id"`
	GroupName string `json:"group_name"`
}

// ListMembers returns all members of a group the caller belongs to
func (h *Handler) ListMembers(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, ok := parseGroupID(c)
	if !ok {
		return
	}

	member, err := access.IsMember(h.db, groupID, userID)
	if err != nil || !member {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var rows []models.GroupMember
	if err := h.db.Preload("User").Where("group_id = ?", groupID).Order("group_member_id").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	members := make([]MemberResponse, len(rows))
	for i, m := range rows {
		members[i] = memberToResponse(m)
	}

	c.JSON(http.StatusOK, members)
}

// RemoveMember removes a member from a group. The owner may remove anyone
// but themself; other members may only remove themselves (leave).
func (h *Handler) RemoveMember(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, ok := parseGroupID(c)
	if !ok {
		return
	}
	targetID := c.Param("userId")

	var group models.Group
	if err := h.db.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	isOwner := group.OwnerID == userID
	if !isOwner && targetID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can remove other members"})
		return
	}
	if targetID == group.OwnerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The owner cannot leave their own group"})
		return
	}

	result := h.db.Where("group_id = ? AND user_id = ?", groupID, targetID).Delete(&models.GroupMember{})
	if result.Error != nil {
		slog.ErrorContext(c.Request.Context(), "failed to remove member", "group_id", groupID, "user_id", targetID, "error", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// NewMembers returns the latest non-owner joiners across viewer's groups,
// excluding viewer.
func NewMembers(db *gorm.DB, viewer string) ([]NewMemberResponse, error) {
	var rows []models.GroupMember
	err := db.Preload("User").Preload("Group").
		Where("group_id IN (?)", access.GroupIDs(db, viewer)).
		Where("is_owner = ? AND user_id <> ?", false, viewer).
		Order("created_at DESC").
		Limit(NewMembersLimit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]NewMemberResponse, len(rows))
	for i, m := range rows {
		result[i] = NewMemberResponse{MemberResponse: memberToResponse(m), GroupID: m.GroupID}
		if m.Group != nil {
			result[i].GroupName = m.Group.Name
		}
	}
	return result, nil
}

// RecentMembers lists people who recently joined the caller's groups
func (h *Handler) RecentMembers(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	members, err := NewMembers(h.db, userID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list new members", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, members)
}

// RegisterMemberRoutes registers routes that span all of the caller's groups
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.GET("/members/new", h.RecentMembers)
}
