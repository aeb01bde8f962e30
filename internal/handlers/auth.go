package handlers

import (
	"errors"
	"net/http"

	"wager-ledger/internal/auth"
	"wager-ledger/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	profileService *services.ProfileService
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(profileService *services.ProfileService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// WalletLogin authenticates a wallet by its signature of auth.LoginMessage.
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wallet, err := auth.VerifyWalletSignature(req.WalletAddress, req.Signature)
	if errors.Is(err, auth.ErrInvalidSignature) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := auth.GenerateToken(wallet)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	h.logger.Info("wallet login", zap.String("wallet", wallet.String()))
	c.JSON(http.StatusOK, gin.H{
		"token":          token,
		"wallet_address": wallet.String(),
	})
}

// Logout handles user logout (stateless JWT, client-side only)
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}

// GetMe returns the authenticated wallet and its profile, if registered
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	wallet, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), wallet)
	if err != nil && !errors.Is(err, services.ErrProfileNotFound) {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_address": wallet.String(),
		"profile":        profile,
	})
}
