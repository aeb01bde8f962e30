package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"wager-ledger/internal/blockchain"
	"wager-ledger/internal/models"
	"wager-ledger/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err as {"error", "code", "name"} for ledger rule
// violations and {"error"} for everything else.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if betErr, ok := services.AsBetError(err); ok {
		c.JSON(betErr.HTTPStatus(), gin.H{
			"error": betErr.Message,
			"code":  betErr.Code,
			"name":  betErr.Name,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, services.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrBetNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrFriendNotFound),
		errors.Is(err, blockchain.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrProfileExists),
		errors.Is(err, services.ErrFriendExists):
		status = http.StatusConflict
	case errors.Is(err, blockchain.ErrForeignAccount),
		errors.Is(err, blockchain.ErrUnknownLayout),
		errors.Is(err, blockchain.ErrDiscriminator),
		errors.Is(err, blockchain.ErrLegacyReferee):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func addressParam(c *gin.Context, name string) (models.Address, bool) {
	addr, err := models.AddressFromBase58(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return models.Address{}, false
	}
	return addr, true
}

// pagination parses limit/offset query parameters
func pagination(c *gin.Context) (int, int) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
