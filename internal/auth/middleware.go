package auth

import (
	"net/http"
	"strings"

	"wager-ledger/internal/models"

	"github.com/gin-gonic/gin"
)

const walletKey = "wallet_address"

// AuthMiddleware validates JWT tokens and protects routes
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Expected: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		wallet, err := claims.Wallet()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Token carries an invalid wallet address",
			})
			c.Abort()
			return
		}

		c.Set(walletKey, wallet)
		c.Next()
	}
}

// GetWallet retrieves the authenticated wallet from the context
func GetWallet(c *gin.Context) (models.Address, bool) {
	v, exists := c.Get(walletKey)
	if !exists {
		return models.Address{}, false
	}

	wallet, ok := v.(models.Address)
	return wallet, ok
}
