package handlers

import (
	"net/http"

	"wager-ledger/internal/auth"
	"wager-ledger/internal/models"
	"wager-ledger/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WalletHandler struct {
	walletService *services.WalletService
	logger        *zap.Logger
	allowAirdrop  bool
}

func NewWalletHandler(walletService *services.WalletService, allowAirdrop bool, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{walletService: walletService, allowAirdrop: allowAirdrop, logger: logger}
}

// GetBalance returns the caller's spendable balance
// GET /api/wallet
func (h *WalletHandler) GetBalance(c *gin.Context) {
	owner, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.walletService.GetBalance(c.Request.Context(), owner)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// Airdrop credits test funds to the caller. Disabled in production.
// POST /api/wallet/airdrop
func (h *WalletHandler) Airdrop(c *gin.Context) {
	if !h.allowAirdrop {
		c.JSON(http.StatusForbidden, gin.H{"error": "airdrop is disabled"})
		return
	}
	owner, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.AirdropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.walletService.Airdrop(c.Request.Context(), owner, req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}
