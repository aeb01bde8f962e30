package handlers

import (
	"context"
	"net/http"

	"wager-ledger/internal/blockchain"
	"wager-ledger/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChainReader reads ledger records straight from the program's accounts.
type ChainReader interface {
	GetBet(ctx context.Context, addr models.Address) (*models.Bet, error)
	GetProfile(ctx context.Context, addr models.Address) (*models.Profile, error)
	GetProfileByOwner(ctx context.Context, owner models.Address) (*models.Profile, error)
	RunDiagnostics(ctx context.Context) *blockchain.DiagnosticResult
}

type ChainHandler struct {
	reader ChainReader
	logger *zap.Logger
}

func NewChainHandler(reader ChainReader, logger *zap.Logger) *ChainHandler {
	return &ChainHandler{reader: reader, logger: logger}
}

// GetBet decodes an on-chain bet account
// GET /api/chain/bets/:address
func (h *ChainHandler) GetBet(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	bet, err := h.reader.GetBet(c.Request.Context(), addr)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}

// GetProfile decodes an on-chain profile account
// GET /api/chain/profiles/:address
func (h *ChainHandler) GetProfile(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	profile, err := h.reader.GetProfile(c.Request.Context(), addr)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetOwnerProfile derives the wallet's profile account and decodes it
// GET /api/chain/owners/:owner/profile
func (h *ChainHandler) GetOwnerProfile(c *gin.Context) {
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}

	profile, err := h.reader.GetProfileByOwner(c.Request.Context(), owner)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Diagnostics reports RPC connectivity and the configured program
// GET /api/chain/diagnostics
func (h *ChainHandler) Diagnostics(c *gin.Context) {
	result := h.reader.RunDiagnostics(c.Request.Context())
	status := http.StatusOK
	if !result.RPCConnected {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
