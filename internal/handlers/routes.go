package handlers

import (
	"wager-ledger/internal/auth"

	"github.com/gin-gonic/gin"
)

// Set bundles the HTTP handlers mounted by RegisterRoutes. Chain may be nil
// when no RPC endpoint is configured.
type Set struct {
	Auth    *AuthHandler
	Bets    *BetHandler
	Profile *ProfileHandler
	Friends *FriendHandler
	Wallet  *WalletHandler
	Chain   *ChainHandler
}

// RegisterRoutes mounts the public and authenticated API
func RegisterRoutes(router *gin.Engine, h Set) {
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", h.Auth.WalletLogin)
		authRoutes.POST("/logout", h.Auth.Logout)
	}

	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", h.Auth.GetMe)
	}

	// Public read routes
	public := router.Group("/api")
	{
		public.GET("/bets", h.Bets.ListOpenBets)
		public.GET("/bets/:address", h.Bets.GetBet)
		public.GET("/bets/:address/treasury", h.Bets.GetTreasury)
		public.GET("/bets/:address/transfers", h.Bets.ListTransfers)
		public.GET("/profiles/:owner", h.Profile.GetProfile)

		if h.Chain != nil {
			public.GET("/chain/bets/:address", h.Chain.GetBet)
			public.GET("/chain/profiles/:address", h.Chain.GetProfile)
			public.GET("/chain/owners/:owner/profile", h.Chain.GetOwnerProfile)
			public.GET("/chain/diagnostics", h.Chain.Diagnostics)
		}
	}

	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/me/bets", h.Bets.ListMyBets)
		api.POST("/bets", h.Bets.CreateBet)
		api.POST("/bets/:address/accept", h.Bets.AcceptBet)
		api.POST("/bets/:address/cancel", h.Bets.CancelBet)
		api.POST("/bets/:address/resolve", h.Bets.ResolveBet)
		api.DELETE("/bets/:address", h.Bets.DeleteBet)

		api.POST("/profiles", h.Profile.CreateProfile)
		api.GET("/me/profile", h.Profile.GetMyProfile)

		api.POST("/friends", h.Friends.AddFriend)
		api.GET("/friends", h.Friends.ListFriends)
		api.POST("/friends/:address/accept", h.Friends.AcceptFriend)

		api.GET("/wallet", h.Wallet.GetBalance)
		api.POST("/wallet/airdrop", h.Wallet.Airdrop)
	}
}
