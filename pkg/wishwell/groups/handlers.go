// Package groups manages gift groups and their membership.
package groups

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/access"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"github.com/mikepea/wishwell/pkg/wishwell/storage"
	"gorm.io/gorm"
)

// UpcomingLimit caps the upcoming-groups widget
const UpcomingLimit = 5

// Handler handles group-related requests
type Handler struct {
	db       *gorm.DB
	uploader storage.Uploader
	now      func() time.Time
}

// NewHandler creates a new groups handler. uploader may be nil, in which
// case image uploads are unavailable.
func NewHandler(db *gorm.DB, uploader storage.Uploader) *Handler {
	return &Handler{db: db, uploader: uploader, now: func() time.Time { return time.Now().UTC() }}
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name     string    `json:"name" binding:"required"`
	DueDate  time.Time `json:"due_date" binding:"required"`
	ImageURL *string   `json:"image_url" binding:"omitempty,url"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name     *string    `json:"name" binding:"omitempty,min=1"`
	DueDate  *time.Time `json:"due_date"`
	ImageURL *string    `json:"image_url" binding:"omitempty,url"`
}

// MemberResponse is a group member without contact details
type MemberResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	IsOwner     bool      `json:"is_owner"`
	JoinedAt    time.Time `json:"joined_at"`
}

// InviteResponse is a pending invite without contact details
type InviteResponse struct {
	GroupInviteID uint      `json:"group_invite_id"`
	UserID        string    `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	AvatarURL     *string   `json:"avatar_url"`
	InvitedAt     time.Time `json:"invited_at"`
}

// OwnedGroupResponse is a group with its members and pending invites
type OwnedGroupResponse struct {
	models.Group
	Members []MemberResponse `json:"members"`
	Invites []InviteResponse `json:"invites"`
}

func memberToResponse(m models.GroupMember) MemberResponse {
	r := MemberResponse{UserID: m.UserID, IsOwner: m.IsOwner, JoinedAt: m.CreatedAt}
	if m.User != nil {
		r.DisplayName = m.User.DisplayName
		r.AvatarURL = m.User.AvatarURL
	}
	return r
}

func inviteToResponse(i models.GroupInvite) InviteResponse {
	r := InviteResponse{GroupInviteID: i.GroupInviteID, UserID: i.UserID, InvitedAt: i.CreatedAt}
	if i.User != nil {
		r.DisplayName = i.User.DisplayName
		r.AvatarURL = i.User.AvatarURL
	}
	return r
}

func parseGroupID(c *gin.Context) (uint, bool) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return 0, false
	}
	return uint(groupID), true
}

// ownedGroup loads the group in the path if the caller owns it
func (h *Handler) ownedGroup(c *gin.Context) (*models.Group, bool) {
	userID, _ := auth.GetUserID(c)
	groupID, ok := parseGroupID(c)
	if !ok {
		return nil, false
	}

	group, err := access.OwnedGroup(h.db, groupID, userID)
	if err != nil {
		if access.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		}
		return nil, false
	}
	return group, true
}

// Create creates a group with the caller as its owner
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group details"
// @Success 201 {object} models.Group
// @Failure 400 {object} map[string]string "Validation error"
// @Router /groups [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := models.Group{
		Name:     req.Name,
		OwnerID:  userID,
		DueDate:  req.DueDate.UTC(),
		ImageURL: req.ImageURL,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{GroupID: group.GroupID, UserID: userID, IsOwner: true}).Error
	})
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to create group", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, group)
}

// Get returns a group for editing; only its owner may fetch it
func (h *Handler) Get(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, group)
}

// Owned lists the caller's groups with members and pending invites
func (h *Handler) Owned(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var groups []models.Group
	err := h.db.Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("group_member_id") }).
		Preload("Members.User").
		Preload("Invites.User").
		Where("owner_id = ?", userID).
		Order("due_date").
		Find(&groups).Error
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list owned groups", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	responses := make([]OwnedGroupResponse, len(groups))
	for i, g := range groups {
		r := OwnedGroupResponse{
			Members: make([]MemberResponse, len(g.Members)),
			Invites: make([]InviteResponse, len(g.Invites)),
		}
		for j, m := range g.Members {
			r.Members[j] = memberToResponse(m)
		}
		for j, inv := range g.Invites {
			r.Invites[j] = inviteToResponse(inv)
		}
		g.Members, g.Invites = nil, nil
		r.Group = g
		responses[i] = r
	}

	c.JSON(http.StatusOK, responses)
}

// Joined lists groups the caller belongs to but does not own
func (h *Handler) Joined(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var groups []models.Group
	err := h.db.Preload("Owner").
		Select("groups.*").
		Joins("JOIN group_members ON group_members.group_id = groups.group_id").
		Where("group_members.user_id = ? AND group_members.is_owner = ?", userID, false).
		Order("groups.due_date").
		Find(&groups).Error
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list joined groups", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	c.JSON(http.StatusOK, groups)
}

// Upcoming lists the caller's groups by due date, latest first
func (h *Handler) Upcoming(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var groups []models.Group
	err := h.db.Preload("Owner").
		Where("group_id IN (?)", access.GroupIDs(h.db, userID)).
		Order("due_date DESC").
		Limit(UpcomingLimit).
		Find(&groups).Error
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list upcoming groups", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	c.JSON(http.StatusOK, groups)
}

// Update changes a group's details (owner only)
func (h *Handler) Update(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.DueDate != nil {
		group.DueDate = req.DueDate.UTC()
	}
	if req.ImageURL != nil {
		group.ImageURL = req.ImageURL
	}

	if err := h.db.Save(group).Error; err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to update group", "group_id", group.GroupID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	c.JSON(http.StatusOK, group)
}

// DeleteGroup removes a group with its invites and memberships in one
// transaction. Only the owner may delete.
func DeleteGroup(db *gorm.DB, groupID uint, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := access.OwnedGroup(tx, groupID, userID); err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupInvite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, groupID).Error
	})
}

// Delete deletes a group
// @Summary Delete a group
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} map[string]string "Group deleted"
// @Failure 404 {object} map[string]string "Group not found"
// @Router /groups/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, ok := parseGroupID(c)
	if !ok {
		return
	}

	if err := DeleteGroup(h.db, groupID, userID); err != nil {
		if access.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to delete group", "group_id", groupID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// UploadImage stores a new group picture and sets it as the image_url
func (h *Handler) UploadImage(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	url, err := storage.UploadImage(h.uploader, "groups/"+strconv.FormatUint(uint64(group.GroupID), 10), fh)
	if errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrNotImage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "group image upload failed", "group_id", group.GroupID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
		return
	}

	group.ImageURL = &url
	if err := h.db.Model(group).Update("image_url", url).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	c.JSON(http.StatusOK, group)
}

// RegisterRoutes registers group routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/owned", h.Owned)
	rg.GET("/joined", h.Joined)
	rg.GET("/upcoming", h.Upcoming)
	rg.GET("/statuses", h.Statuses)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/image", h.UploadImage)

	rg.GET("/:id/members", h.ListMembers)
	rg.DELETE("/:id/members/:userId", h.RemoveMember)
}
