// Package importexport moves a user's wish list in and out as JSON.
package importexport

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// Handler handles import/export requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new import/export handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// WishItem is a gift in the portable wish-list format
type WishItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	WebLink     string  `json:"web_link"`
	Priority    string  `json:"priority"`
	Private     bool    `json:"private"`
	Archived    bool    `json:"archived"`
	Added       string  `json:"added,omitempty"`
}

// ImportRequest represents an import request
type ImportRequest struct {
	Items []WishItem `json:"items" binding:"required"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func parsePriority(s string) (models.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium":
		return models.PriorityMedium, nil
	case "low":
		return models.PriorityLow, nil
	case "high":
		return models.PriorityHigh, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// ToGift validates item and converts it into a gift owned by userID
func ToGift(item WishItem, userID string) (models.Gift, error) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return models.Gift{}, fmt.Errorf("name is required")
	}
	if item.Price < 0 {
		return models.Gift{}, fmt.Errorf("price must not be negative")
	}
	if item.WebLink != "" {
		u, err := url.ParseRequestURI(item.WebLink)
		if err != nil || u.Host == "" {
			return models.Gift{}, fmt.Errorf("invalid web link")
		}
	}
	priority, err := parsePriority(item.Priority)
	if err != nil {
		return models.Gift{}, err
	}

	gift := models.Gift{
		UserID:      userID,
		Name:        name,
		Description: item.Description,
		Price:       item.Price,
		WebLink:     item.WebLink,
		Priority:    priority,
		IsPrivate:   item.Private,
		IsArchived:  item.Archived,
	}
	if item.Added != "" {
		added, err := time.Parse(time.RFC3339, item.Added)
		if err != nil {
			return models.Gift{}, fmt.Errorf("invalid added time")
		}
		gift.CreatedAt = added.UTC()
	}
	return gift, nil
}

// FromGift converts a gift into the portable format
func FromGift(g models.Gift) WishItem {
	return WishItem{
		Name:        g.Name,
		Description: g.Description,
		Price:       g.Price,
		WebLink:     g.WebLink,
		Priority:    g.Priority.String(),
		Private:     g.IsPrivate,
		Archived:    g.IsArchived,
		Added:       g.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Import adds the items to the caller's wish list. Invalid items are
// skipped and reported; valid ones are still imported.
func (h *Handler) Import(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := ImportResult{Errors: []string{}}
	for i, item := range req.Items {
		gift, err := ToGift(item, userID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			result.Skipped++
			continue
		}
		if err := h.db.Create(&gift).Error; err != nil {
			slog.ErrorContext(c.Request.Context(), "failed to import gift", "user_id", userID, "index", i, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: failed to save", i))
			result.Skipped++
			continue
		}
		result.Imported++
	}

	c.JSON(http.StatusOK, result)
}

// Export returns the caller's whole wish list. Claims are never included.
func (h *Handler) Export(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var gifts []models.Gift
	if err := h.db.Where("user_id = ?", userID).Order("created_at ASC").Order("gift_id ASC").Find(&gifts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gifts"})
		return
	}

	items := make([]WishItem, len(gifts))
	for i, g := range gifts {
		items[i] = FromGift(g)
	}

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", "attachment; filename=wishlist.json")
	}

	c.JSON(http.StatusOK, items)
}

// RegisterRoutes registers import/export routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.GET("/export", h.Export)
}
