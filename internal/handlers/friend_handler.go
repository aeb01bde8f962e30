package handlers

import (
	"net/http"

	"wager-ledger/internal/auth"
	"wager-ledger/internal/models"
	"wager-ledger/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FriendHandler struct {
	friendService *services.FriendService
	logger        *zap.Logger
}

func NewFriendHandler(friendService *services.FriendService, logger *zap.Logger) *FriendHandler {
	return &FriendHandler{friendService: friendService, logger: logger}
}

// AddFriend sends a friend request
// POST /api/friends
func (h *FriendHandler) AddFriend(c *gin.Context) {
	user, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		Friend models.Address `json:"friend" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	relation, err := h.friendService.AddFriend(c.Request.Context(), user, req.Friend)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, relation)
}

// AcceptFriend confirms a pending request from :address
// POST /api/friends/:address/accept
func (h *FriendHandler) AcceptFriend(c *gin.Context) {
	user, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	other, ok := addressParam(c, "address")
	if !ok {
		return
	}

	relation, err := h.friendService.AcceptFriend(c.Request.Context(), user, other)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, relation)
}

// ListFriends returns the caller's relations
// GET /api/friends
func (h *FriendHandler) ListFriends(c *gin.Context) {
	user, exists := auth.GetWallet(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	friends, err := h.friendService.ListFriends(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}
