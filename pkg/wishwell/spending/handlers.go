package spending

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"gorm.io/gorm"
)

// Handler serves the caller's claimed gifts and spending
type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

// NewHandler creates a new spending handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Spending totals the caller's purchases over a range
// @Summary Spending over a range
// @Tags claimed
// @Produce json
// @Param range query string false "week, month, year or lifetime"
// @Success 200 {object} Report
// @Success 204 "No purchases in range"
// @Router /claimed/spending [get]
func (h *Handler) Spending(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	r, err := ParseRange(c.Query("range"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := Aggregate(c.Request.Context(), h.db, userID, r, h.now())
	if errors.Is(err, ErrNoData) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to aggregate spending", "range", r, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch spending"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// RecentPurchase returns the caller's latest purchase
func (h *Handler) RecentPurchase(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	purchase, err := RecentPurchase(c.Request.Context(), h.db, userID)
	if errors.Is(err, ErrNoData) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to fetch recent purchase", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent purchase"})
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// List returns the caller's claimed gifts
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	claimed, err := Claimed(c.Request.Context(), h.db, userID, c.Query("recent") == "true", h.now())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list claimed gifts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch claimed gifts"})
		return
	}

	c.JSON(http.StatusOK, claimed)
}

// Export downloads the caller's claimed gifts as a spreadsheet
func (h *Handler) Export(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	format, err := ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claimed, err := Claimed(c.Request.Context(), h.db, userID, c.Query("recent") == "true", h.now())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list claimed gifts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch claimed gifts"})
		return
	}

	filename := fmt.Sprintf("claimed-gifts-%s.%s", h.now().Format("2006-01-02"), format)
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := Export(c.Writer, format, claimed); err != nil {
		slog.ErrorContext(c.Request.Context(), "export failed", "format", format, "error", err)
		c.Status(http.StatusInternalServerError)
	}
}

// RegisterRoutes registers claimed-gift routes under /claimed
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/spending", h.Spending)
	rg.GET("/recent-purchase", h.RecentPurchase)
	rg.GET("/export", h.Export)
}
