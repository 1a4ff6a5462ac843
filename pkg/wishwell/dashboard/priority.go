// Package dashboard serves the derived widgets on a user's home page.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/access"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// PriorityLimit caps the priority-gifts widget
const PriorityLimit = 5

// GroupRef names a group
type GroupRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PriorityGift is a co-member's high-priority gift and the groups the
// viewer shares with its owner
type PriorityGift struct {
	models.Gift
	Groups []GroupRef `json:"groups"`
}

type mutualRow struct {
	UserID    string
	GroupID   uint
	GroupName string
}

// PriorityGifts returns the newest high-priority gifts visible to viewer
func PriorityGifts(db *gorm.DB, viewer string) ([]PriorityGift, error) {
	var gifts []models.Gift
	err := db.Preload("User").
		Where("user_id IN (?)", access.CoMemberIDs(db, viewer)).
		Where("priority = ? AND is_private = ? AND is_archived = ?", models.PriorityHigh, false, false).
		Order("created_at DESC").
		Order("gift_id DESC").
		Limit(PriorityLimit).
		Find(&gifts).Error
	if err != nil {
		return nil, err
	}
	if len(gifts) == 0 {
		return []PriorityGift{}, nil
	}

	owners := make([]string, 0, len(gifts))
	for _, g := range gifts {
		owners = append(owners, g.UserID)
	}

	var rows []mutualRow
	err = db.Table("group_members AS mine").
		Select("other.user_id AS user_id, groups.group_id AS group_id, groups.name AS group_name").
		Joins("JOIN group_members AS other ON other.group_id = mine.group_id").
		Joins("JOIN groups ON groups.group_id = mine.group_id").
		Where("mine.user_id = ? AND other.user_id IN ?", viewer, owners).
		Order("groups.group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	mutual := make(map[string][]GroupRef)
	for _, r := range rows {
		mutual[r.UserID] = append(mutual[r.UserID], GroupRef{ID: r.GroupID, Name: r.GroupName})
	}

	result := make([]PriorityGift, len(gifts))
	for i, g := range gifts {
		result[i] = PriorityGift{Gift: g, Groups: mutual[g.UserID]}
	}
	return result, nil
}

// Handler serves dashboard widgets
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new dashboard handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// Priority lists co-members' high-priority gifts
func (h *Handler) Priority(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	gifts, err := PriorityGifts(h.db, userID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list priority gifts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gifts"})
		return
	}

	c.JSON(http.StatusOK, gifts)
}

// RegisterRoutes registers dashboard routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/priority-gifts", h.Priority)
}
