package handlers

import (
	"net/http"

	"wager-ledger/internal/auth"
	"wager-ledger/internal/models"
	"wager-ledger/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	logger         *zap.Logger
}

func NewProfileHandler(profileService *services.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// CreateProfile registers the caller's ledger
// POST /api/profiles
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	owner, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileService.CreateProfile(c.Request.Context(), owner, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetMyProfile returns the caller's ledger
// GET /api/me/profile
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	owner, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.respondProfile(c, owner)
}

// GetProfile returns the ledger of any wallet
// GET /api/profiles/:owner
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}
	h.respondProfile(c, owner)
}

func (h *ProfileHandler) respondProfile(c *gin.Context, owner models.Address) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), owner)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
