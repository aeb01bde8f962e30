package repository

import (
	"context"
	"errors"

	"wager-ledger/internal/models"
)

var ErrNotFound = errors.New("record not found")

const defaultListLimit = 50

// Store persists ledger records at their derived addresses. Every mutation
// goes through Atomically so that a failed operation leaves no trace.
type Store interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error

	GetBet(ctx context.Context, addr models.Address) (*models.Bet, error)
	GetTreasury(ctx context.Context, addr models.Address) (*models.Treasury, error)
	GetProfile(ctx context.Context, addr models.Address) (*models.Profile, error)
	GetWallet(ctx context.Context, addr models.Address) (*models.Wallet, error)
	ListBets(ctx context.Context, filter models.BetFilter) ([]models.Bet, error)
	// ListReclaimableBets returns terminal bets whose treasury is empty.
	ListReclaimableBets(ctx context.Context, limit int) ([]models.Bet, error)
	ListFriends(ctx context.Context, owner models.Address) ([]models.Friend, error)
	ListTransfers(ctx context.Context, bet models.Address) ([]models.Transfer, error)
}

// Tx is the view of the store inside one atomic operation. Records returned
// by Tx are private copies; changes are only visible after Put.
type Tx interface {
	GetBet(addr models.Address) (*models.Bet, error)
	PutBet(bet *models.Bet) error
	DeleteBet(addr models.Address) error

	GetTreasury(addr models.Address) (*models.Treasury, error)
	PutTreasury(treasury *models.Treasury) error
	DeleteTreasury(addr models.Address) error

	GetProfile(addr models.Address) (*models.Profile, error)
	PutProfile(profile *models.Profile) error

	GetFriend(addr models.Address) (*models.Friend, error)
	PutFriend(friend *models.Friend) error

	// GetWallet never returns ErrNotFound; unknown addresses hold zero.
	GetWallet(addr models.Address) (*models.Wallet, error)
	PutWallet(wallet *models.Wallet) error

	AppendTransfer(transfer *models.Transfer) error
}

func listLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
