package claims

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
)

// Handler exposes gift status changes over HTTP
type Handler struct {
	svc *Service
}

// NewHandler creates a new claims handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// UpdateStatusRequest carries the requested status; null unclaims
type UpdateStatusRequest struct {
	Status *string `json:"status"`
}

// UpdateStatus changes a co-member gift's claim status
// @Summary Update gift status
// @Tags claims
// @Accept json
// @Produce json
// @Param id path int true "Gift ID"
// @Success 200 {object} View
// @Failure 403 {object} map[string]string "Not the claim holder"
// @Failure 409 {object} map[string]string "Already claimed"
// @Router /gifts/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	giftID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gift ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := ParseState(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.svc.UpdateGiftStatus(c.Request.Context(), userID, uint(giftID), target)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Conceal(userID, claim, nil))
}

// Unclaim releases the caller's claim
func (h *Handler) Unclaim(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	giftID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gift ID"})
		return
	}

	if err := h.svc.UnclaimGift(c.Request.Context(), userID, uint(giftID)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Conceal(userID, nil, nil))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Gift not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrUnknownState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "gift status update failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update gift status"})
	}
}

// RegisterRoutes registers claim routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/gifts/:id/status", h.UpdateStatus)
	rg.DELETE("/gifts/:id/claim", h.Unclaim)
}
