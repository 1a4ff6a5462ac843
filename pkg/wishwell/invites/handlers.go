package invites

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/access"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/middleware"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"github.com/mikepea/wishwell/pkg/wishwell/notify"
	"gorm.io/gorm"
)

// Handler handles invitation requests
type Handler struct {
	db       *gorm.DB
	notifier notify.Notifier
	limiter  *middleware.IPRateLimiter
}

// NewHandler creates a new invites handler. limiter throttles sending
// invites and may be nil.
func NewHandler(db *gorm.DB, notifier notify.Notifier, limiter *middleware.IPRateLimiter) *Handler {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Handler{db: db, notifier: notifier, limiter: limiter}
}

// InviteRequest represents the request to invite a user by email
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// InviteResponse is an invite with the invitee's public profile
type InviteResponse struct {
	GroupInviteID uint    `json:"group_invite_id"`
	GroupID       uint    `json:"group_id"`
	UserID        string  `json:"user_id"`
	DisplayName   string  `json:"display_name"`
	AvatarURL     *string `json:"avatar_url"`
}

func inviteToResponse(i models.GroupInvite) InviteResponse {
	r := InviteResponse{GroupInviteID: i.GroupInviteID, GroupID: i.GroupID, UserID: i.UserID}
	if i.User != nil {
		r.DisplayName = i.User.DisplayName
		r.AvatarURL = i.User.AvatarURL
	}
	return r
}

func parseID(c *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID"})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) ownedGroup(c *gin.Context) (*models.Group, bool) {
	userID, _ := auth.GetUserID(c)
	groupID, ok := parseID(c, "group")
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

// Invite invites the profile with the given email to a group (owner only)
// @Summary Invite a user
// @Tags invites
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body InviteRequest true "Invitee email"
// @Success 201 {object} InviteResponse
// @Failure 404 {object} map[string]string "User could not be found"
// @Failure 409 {object} map[string]string "Already a member or invited"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /groups/{id}/invites [post]
func (h *Handler) Invite(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var invitee models.User
	if err := h.db.Where("LOWER(email) = LOWER(?)", req.Email).First(&invitee).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user could not be found"})
		return
	}

	member, err := access.IsMember(h.db, group.GroupID, invitee.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return
	}
	if member {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member"})
		return
	}

	invite := models.GroupInvite{GroupID: group.GroupID, UserID: invitee.UserID}
	if err := h.db.Create(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "User has already been invited"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to create invite", "group_id", group.GroupID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invite"})
		return
	}
	invite.User = &invitee

	var inviter models.User
	h.db.First(&inviter, "user_id = ?", userID)
	if err := h.notifier.InviteSent(c.Request.Context(), notify.Invite{Group: *group, Invitee: invitee, Inviter: inviter}); err != nil {
		slog.WarnContext(c.Request.Context(), "invite notification failed", "group_invite_id", invite.GroupInviteID, "error", err)
	}

	c.JSON(http.StatusCreated, inviteToResponse(invite))
}

// ListByGroup returns the pending invites of a group (owner only)
func (h *Handler) ListByGroup(c *gin.Context) {
	group, ok := h.ownedGroup(c)
	if !ok {
		return
	}

	var invites []models.GroupInvite
	if err := h.db.Preload("User").Where("group_id = ?", group.GroupID).Order("group_invite_id").Find(&invites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}

	responses := make([]InviteResponse, len(invites))
	for i, inv := range invites {
		responses[i] = inviteToResponse(inv)
	}
	c.JSON(http.StatusOK, responses)
}

// Mine returns the caller's pending invites with the inviting group and owner
func (h *Handler) Mine(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var invites []models.GroupInvite
	if err := h.db.Preload("Group.Owner").Where("user_id = ?", userID).Order("group_invite_id").Find(&invites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}

	c.JSON(http.StatusOK, invites)
}

// Delete revokes (group owner) or declines (invitee) an invite
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	inviteID, ok := parseID(c, "invite")
	if !ok {
		return
	}

	var invite models.GroupInvite
	err := h.db.Preload("Group").First(&invite, inviteID).Error
	allowed := err == nil && (invite.UserID == userID || (invite.Group != nil && invite.Group.OwnerID == userID))
	if !allowed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
		return
	}

	if err := h.db.Delete(&invite).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete invite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite deleted"})
}

// Accept joins the group the caller was invited to
func (h *Handler) Accept(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	inviteID, ok := parseID(c, "invite")
	if !ok {
		return
	}

	member, err := Accept(c.Request.Context(), h.db, inviteID, userID)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, member)
	case errors.Is(err, ErrInviteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
	case errors.Is(err, ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "failed to accept invite", "group_invite_id", inviteID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invite"})
	}
}

// RegisterRoutes registers invite routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	send := []gin.HandlerFunc{h.Invite}
	if h.limiter != nil {
		send = append([]gin.HandlerFunc{middleware.RateLimitByIP(h.limiter)}, send...)
	}
	rg.POST("/groups/:id/invites", send...)
	rg.GET("/groups/:id/invites", h.ListByGroup)

	rg.GET("/invites", h.Mine)
	rg.DELETE("/invites/:id", h.Delete)
	rg.POST("/invites/:id/accept", h.Accept)
}
