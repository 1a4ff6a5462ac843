// Package versions serves the release notice for the current version.
package versions

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// ErrNoActiveVersion is returned when no version is marked active
var ErrNoActiveVersion = errors.New("no active version")

// Active returns the active version, newest first if several are flagged
func Active(db *gorm.DB) (*models.Version, error) {
	var v models.Version
	err := db.Where("is_active = ?", true).Order("version_id DESC").First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveVersion
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Handler handles version requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new versions handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GetActive returns the active version or 404 when there is none
// @Summary Get active version
// @Tags versions
// @Produce json
// @Success 200 {object} models.Version
// @Failure 404 {object} map[string]string
// @Router /versions/active [get]
func (h *Handler) GetActive(c *gin.Context) {
	v, err := Active(h.db)
	if errors.Is(err, ErrNoActiveVersion) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active version"})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to load active version", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch version"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// RegisterRoutes registers version routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/active", h.GetActive)
}
