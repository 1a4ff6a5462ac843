// Package profiles manages the caller's own user profile.
package profiles

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"github.com/mikepea/wishwell/pkg/wishwell/storage"
	"gorm.io/gorm"
)

// ContextKeyProfile holds the loaded *models.User once RequireProfile passes
const ContextKeyProfile = "profile"

// Handler handles profile requests
type Handler struct {
	db       *gorm.DB
	uploader storage.Uploader
}

// NewHandler creates a new profile handler. uploader may be nil.
func NewHandler(db *gorm.DB, uploader storage.Uploader) *Handler {
	return &Handler{db: db, uploader: uploader}
}

// ProfileResponse is the caller's own profile
type ProfileResponse struct {
	models.User
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

// CreateProfileRequest represents the first-sign-in profile
type CreateProfileRequest struct {
	DisplayName string  `json:"display_name" binding:"required"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,url"`
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name" binding:"omitempty,min=1"`
	AvatarURL      *string `json:"avatar_url" binding:"omitempty,url"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

func toResponse(u models.User) ProfileResponse {
	return ProfileResponse{User: u, TelegramChatID: u.TelegramChatID}
}

// RequireProfile rejects requests from authenticated users who have not
// created a profile yet.
func RequireProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		var user models.User
		err := db.Where("user_id = ?", userID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusPreconditionRequired, gin.H{"error": "Profile required"})
			return
		}
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "failed to load profile", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}

		c.Set(ContextKeyProfile, &user)
		c.Next()
	}
}

// GetProfile returns the profile loaded by RequireProfile
func GetProfile(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextKeyProfile)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

// Me returns the caller's profile
// @Summary Get current profile
// @Tags profiles
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} map[string]string
// @Router /me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var user models.User
	if err := h.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, toResponse(user))
}

// Create stores the caller's profile using the token's subject and email
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	email, _ := auth.GetEmail(c)
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token has no email"})
		return
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		UserID:      userID,
		DisplayName: strings.TrimSpace(req.DisplayName),
		AvatarURL:   req.AvatarURL,
		Email:       strings.ToLower(email),
	}
	if user.DisplayName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Display name is required"})
		return
	}

	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Profile already exists"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to create profile", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, toResponse(user))
}

// Update changes the caller's display name, avatar or notification chat
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var user models.User
	if err := h.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Display name is required"})
			return
		}
		updates["display_name"] = name
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.TelegramChatID != nil {
		updates["telegram_chat_id"] = *req.TelegramChatID
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	}

	h.db.Where("user_id = ?", userID).First(&user)
	c.JSON(http.StatusOK, toResponse(user))
}

// UploadAvatar stores a new avatar image and sets it on the profile
func (h *Handler) UploadAvatar(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}
	userID, _ := auth.GetUserID(c)

	var user models.User
	if err := h.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	url, err := storage.UploadImage(h.uploader, "avatars/"+userID, fh)
	if errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrNotImage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "avatar upload failed", "user_id", userID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
		return
	}

	user.AvatarURL = &url
	if err := h.db.Model(&user).Update("avatar_url", url).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, toResponse(user))
}

// RegisterRoutes registers profile routes. They must not sit behind
// RequireProfile, since creating a profile is how a user gets past it.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.POST("/me", h.Create)
	rg.PUT("/me", h.Update)
	rg.POST("/me/avatar", h.UploadAvatar)
}
