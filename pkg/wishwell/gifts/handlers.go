// Package gifts manages the caller's own wish list. Claim data never
// appears on these routes: owners must not learn who claimed their gifts.
package gifts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/access"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// Handler handles wish-list requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new gifts handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateGiftRequest represents the request to add a gift
type CreateGiftRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       *float64        `json:"price" binding:"required,gte=0"`
	WebLink     string          `json:"web_link" binding:"omitempty,url"`
	Priority    models.Priority `json:"priority" binding:"required,oneof=1 2 3"`
	IsPrivate   bool            `json:"is_private"`
}

// UpdateGiftRequest represents the request to update a gift
type UpdateGiftRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1"`
	Description *string          `json:"description"`
	Price       *float64         `json:"price" binding:"omitempty,gte=0"`
	WebLink     *string          `json:"web_link" binding:"omitempty,url"`
	Priority    *models.Priority `json:"priority" binding:"omitempty,oneof=1 2 3"`
	IsPrivate   *bool            `json:"is_private"`
	IsArchived  *bool            `json:"is_archived"`
}

func (h *Handler) ownGift(c *gin.Context) (*models.Gift, bool) {
	userID, _ := auth.GetUserID(c)
	giftID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gift ID"})
		return nil, false
	}

	var gift models.Gift
	if err := h.db.Where("gift_id = ? AND user_id = ?", giftID, userID).First(&gift).Error; err != nil {
		if access.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Gift not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gift"})
		}
		return nil, false
	}
	return &gift, true
}

// List returns the caller's gifts
// @Summary List own gifts
// @Tags gifts
// @Produce json
// @Param private query bool false "Filter by privacy"
// @Param archived query bool false "Filter by archived state"
// @Success 200 {array} models.Gift
// @Router /gifts [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	query := h.db.Where("user_id = ?", userID).Order("created_at DESC")
	if private := c.Query("private"); private != "" {
		query = query.Where("is_private = ?", private == "true")
	}
	if archived := c.Query("archived"); archived != "" {
		query = query.Where("is_archived = ?", archived == "true")
	}

	var gifts []models.Gift
	if err := query.Find(&gifts).Error; err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list gifts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gifts"})
		return
	}

	c.JSON(http.StatusOK, gifts)
}

// Get returns one of the caller's gifts
func (h *Handler) Get(c *gin.Context) {
	gift, ok := h.ownGift(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gift)
}

// Create adds a gift to the caller's list
// @Summary Create a gift
// @Tags gifts
// @Accept json
// @Produce json
// @Param request body CreateGiftRequest true "Gift details"
// @Success 201 {object} models.Gift
// @Failure 400 {object} map[string]string "Validation error"
// @Router /gifts [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gift := models.Gift{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		WebLink:     req.WebLink,
		Priority:    req.Priority,
		IsPrivate:   req.IsPrivate,
	}
	if err := h.db.Create(&gift).Error; err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to create gift", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create gift"})
		return
	}

	c.JSON(http.StatusCreated, gift)
}

// Update changes a gift; archiving is done through is_archived
func (h *Handler) Update(c *gin.Context) {
	gift, ok := h.ownGift(c)
	if !ok {
		return
	}

	var req UpdateGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		gift.Name = *req.Name
	}
	if req.Description != nil {
		gift.Description = *req.Description
	}
	if req.Price != nil {
		gift.Price = *req.Price
	}
	if req.WebLink != nil {
		gift.WebLink = *req.WebLink
	}
	if req.Priority != nil {
		gift.Priority = *req.Priority
	}
	if req.IsPrivate != nil {
		gift.IsPrivate = *req.IsPrivate
	}
	if req.IsArchived != nil {
		gift.IsArchived = *req.IsArchived
	}

	if err := h.db.Save(gift).Error; err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to update gift", "gift_id", gift.GiftID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update gift"})
		return
	}

	c.JSON(http.StatusOK, gift)
}

// Delete removes a gift and any claim on it
func (h *Handler) Delete(c *gin.Context) {
	gift, ok := h.ownGift(c)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gift_id = ?", gift.GiftID).Delete(&models.ClaimedGift{}).Error; err != nil {
			return err
		}
		return tx.Delete(gift).Error
	})
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to delete gift", "gift_id", gift.GiftID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete gift"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gift deleted"})
}

// RegisterRoutes registers gift routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/gifts", h.List)
	rg.POST("/gifts", h.Create)
	rg.GET("/gifts/:id", h.Get)
	rg.PUT("/gifts/:id", h.Update)
	rg.DELETE("/gifts/:id", h.Delete)
}
