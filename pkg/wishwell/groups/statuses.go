package groups

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/access"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// StatusLimit caps the group-progress widget
const StatusLimit = 3

// GroupStatus is the claim progress of a group's gifts. It carries counts
// only, never who claimed what.
type GroupStatus struct {
	Group     models.Group `json:"group"`
	Total     int          `json:"total"`
	Claimed   int          `json:"claimed"`
	Purchased int          `json:"purchased"`
}

type statusRow struct {
	GroupID  uint
	GiftID   uint
	StatusID *int
}

// Statuses computes progress for viewer's groups that are not yet due.
// Gifts counted are the visible gifts of the other members, each counted
// once per group. The groups with the most gifts come first.
func Statuses(db *gorm.DB, viewer string, now func() time.Time) ([]GroupStatus, error) {
	var groups []models.Group
	if err := db.Where("group_id IN (?) AND due_date >= ?", access.GroupIDs(db, viewer), now()).
		Order("group_id").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []GroupStatus{}, nil
	}

	ids := make([]uint, len(groups))
	for i, g := range groups {
		ids[i] = g.GroupID
	}

	var rows []statusRow
	err := db.Table("group_members").
		Select("DISTINCT group_members.group_id, gifts.gift_id, claimed_gifts.status_id").
		Joins("JOIN gifts ON gifts.user_id = group_members.user_id").
		Joins("LEFT JOIN claimed_gifts ON claimed_gifts.gift_id = gifts.gift_id").
		Where("group_members.group_id IN ? AND group_members.user_id <> ?", ids, viewer).
		Where("gifts.is_private = ? AND gifts.is_archived = ?", false, false).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byGroup := make(map[uint]*GroupStatus, len(groups))
	result := make([]GroupStatus, len(groups))
	for i, g := range groups {
		result[i] = GroupStatus{Group: g}
		byGroup[g.GroupID] = &result[i]
	}
	for _, r := range rows {
		s := byGroup[r.GroupID]
		s.Total++
		if r.StatusID == nil {
			continue
		}
		switch models.Status(*r.StatusID) {
		case models.StatusClaimed:
			s.Claimed++
		case models.StatusPurchased:
			s.Purchased++
		}
	}

	slices.SortStableFunc(result, func(a, b GroupStatus) int { return b.Total - a.Total })
	if len(result) > StatusLimit {
		result = result[:StatusLimit]
	}
	return result, nil
}

// Statuses returns claim progress for the caller's upcoming groups
func (h *Handler) Statuses(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	statuses, err := Statuses(h.db, userID, h.now)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to compute group statuses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group statuses"})
		return
	}

	c.JSON(http.StatusOK, statuses)
}
