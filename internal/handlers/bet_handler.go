package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"wager-ledger/internal/auth"
	"wager-ledger/internal/cache"
	"wager-ledger/internal/models"
	"wager-ledger/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BetHandler struct {
	betService *services.BetService
	feed       *cache.BetFeedCache
	logger     *zap.Logger
}

func NewBetHandler(betService *services.BetService, feed *cache.BetFeedCache, logger *zap.Logger) *BetHandler {
	return &BetHandler{
		betService: betService,
		feed:       feed,
		logger:     logger,
	}
}

// CreateBet opens a new bet for the caller
// POST /api/bets
func (h *BetHandler) CreateBet(c *gin.Context) {
	creator, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.betService.CreateBet(c.Request.Context(), creator, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidateFeed(c)
	c.JSON(http.StatusCreated, bet)
}

// GetBet returns a bet by address
// GET /api/bets/:address
func (h *BetHandler) GetBet(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	bet, err := h.betService.GetBet(c.Request.Context(), addr)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}

// ListOpenBets returns the public feed of unmatched bets
// GET /api/bets
func (h *BetHandler) ListOpenBets(c *gin.Context) {
	limit, offset := pagination(c)
	ctx := c.Request.Context()

	if page, hit, err := h.feed.Get(ctx, limit, offset); err != nil {
		h.logger.Warn("feed cache read failed", zap.Error(err))
	} else if hit {
		c.Data(http.StatusOK, "application/json; charset=utf-8", page)
		return
	}

	bets, err := h.betService.ListOpenBets(ctx, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	page, err := json.Marshal(gin.H{
		"bets":   bets,
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.feed.Set(ctx, limit, offset, page); err != nil {
		h.logger.Warn("feed cache write failed", zap.Error(err))
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", page)
}

// ListMyBets returns bets the caller created or accepted
// GET /api/me/bets
func (h *BetHandler) ListMyBets(c *gin.Context) {
	wallet, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, offset := pagination(c)

	bets, err := h.betService.ListParticipantBets(c.Request.Context(), wallet, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bets":   bets,
		"limit":  limit,
		"offset": offset,
	})
}

// AcceptBet matches an open bet
// POST /api/bets/:address/accept
func (h *BetHandler) AcceptBet(c *gin.Context) {
	acceptor, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	var guard models.BetGuard
	if !bindOptionalJSON(c, &guard) {
		return
	}

	bet, err := h.betService.AcceptBet(c.Request.Context(), acceptor, addr, guard)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidateFeed(c)
	c.JSON(http.StatusOK, bet)
}

// CancelBet withdraws an unmatched bet
// POST /api/bets/:address/cancel
func (h *BetHandler) CancelBet(c *gin.Context) {
	caller, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	bet, err := h.betService.CancelBet(c.Request.Context(), caller, addr)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidateFeed(c)
	c.JSON(http.StatusOK, bet)
}

// ResolveBet records the referee's verdict
// POST /api/bets/:address/resolve
func (h *BetHandler) ResolveBet(c *gin.Context) {
	referee, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	var req models.ResolveBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, settlement, err := h.betService.ResolveBet(c.Request.Context(), referee, addr, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bet":        bet,
		"settlement": settlement,
	})
}

// DeleteBet reclaims a finished bet's records. Any caller may do this.
// DELETE /api/bets/:address
func (h *BetHandler) DeleteBet(c *gin.Context) {
	caller, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	var guard models.BetGuard
	if !bindOptionalJSON(c, &guard) {
		return
	}

	if err := h.betService.DeleteBet(c.Request.Context(), caller, addr, guard); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.invalidateFeed(c)
	c.JSON(http.StatusOK, gin.H{"message": "bet deleted"})
}

// GetTreasury returns the escrow balance of a bet
// GET /api/bets/:address/treasury
func (h *BetHandler) GetTreasury(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	treasury, err := h.betService.GetTreasury(c.Request.Context(), addr)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"treasury": treasury,
		"sol":      services.LamportsToSOL(treasury.Balance),
	})
}

// ListTransfers returns the escrow journal of a bet
// GET /api/bets/:address/transfers
func (h *BetHandler) ListTransfers(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	transfers, err := h.betService.ListTransfers(c.Request.Context(), addr)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}

func (h *BetHandler) invalidateFeed(c *gin.Context) {
	if err := h.feed.Invalidate(c.Request.Context()); err != nil {
		h.logger.Warn("feed cache invalidation failed", zap.Error(err))
	}
}

// bindOptionalJSON binds the body into v when one was sent.
func bindOptionalJSON(c *gin.Context, v interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
