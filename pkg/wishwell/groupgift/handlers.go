package groupgift

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"gorm.io/gorm"
)

// Handler serves group-gift views
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new group-gift handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) load(c *gin.Context) (*View, bool) {
	userID, _ := auth.GetUserID(c)
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return nil, false
	}

	view, err := Load(c.Request.Context(), h.db, userID, uint(groupID))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return nil, false
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to load group gifts", "group_id", groupID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group gifts"})
		return nil, false
	}
	return view, true
}

// Get returns the group with its co-members and their gifts
// @Summary Group gift view
// @Tags groupgift
// @Produce json
// @Param id path int true "Group ID"
// @Param search query string false "Member name contains"
// @Param refine query string false "available or claimed"
// @Param order_by query string false "name, claimed-gifts or requested-gifts"
// @Param order_dir query string false "asc or desc"
// @Success 200 {object} View
// @Router /groups/{id}/gifts [get]
func (h *Handler) Get(c *gin.Context) {
	filter, err := ParseMemberFilter(c.Query("search"), c.Query("refine"), c.Query("order_by"), c.Query("order_dir"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, ok := h.load(c)
	if !ok {
		return
	}
	view.Members = ApplyMemberFilter(filter, view.Members)

	c.JSON(http.StatusOK, view)
}

// MemberGifts returns one co-member's gifts
func (h *Handler) MemberGifts(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	view, ok := h.load(c)
	if !ok {
		return
	}

	member, found := view.Member(c.Param("userId"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	filter := GiftFilter{
		Search:        c.Query("search"),
		Available:     c.Query("available") == "true",
		ClaimedByUser: c.Query("claimed_by_user") == "true",
		Priority:      c.Query("priority") == "true",
	}
	member.Gifts = ApplyGiftFilter(filter, member.Gifts, userID)

	c.JSON(http.StatusOK, member)
}

// RegisterRoutes registers group-gift routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/groups/:id/gifts", h.Get)
	rg.GET("/groups/:id/gifts/members/:userId", h.MemberGifts)
}
