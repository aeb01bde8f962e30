package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const LamportsPerSOL = 1_000_000_000

// WalletService exposes participant balances held outside of any escrow.
type WalletService struct {
	store  repository.Store
	logger *zap.Logger
	clock  func() time.Time
}

func NewWalletService(store repository.Store, logger *zap.Logger) *WalletService {
	return &WalletService{store: store, logger: logger, clock: time.Now}
}

type WalletBalance struct {
	Address  models.Address  `json:"address"`
	Lamports uint64          `json:"lamports"`
	SOL      decimal.Decimal `json:"sol"`
}

func (s *WalletService) GetBalance(ctx context.Context, owner models.Address) (*WalletBalance, error) {
	wallet, err := s.store.GetWallet(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &WalletBalance{Address: owner, Lamports: wallet.Balance, SOL: LamportsToSOL(wallet.Balance)}, nil
}

// Airdrop credits test funds to a wallet.
func (s *WalletService) Airdrop(ctx context.Context, owner models.Address, amount uint64) (*WalletBalance, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	var balance uint64
	err := s.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := creditWallet(tx, owner, amount); err != nil {
			return err
		}
		wallet, err := tx.GetWallet(owner)
		if err != nil {
			return err
		}
		balance = wallet.Balance
		return tx.AppendTransfer(&models.Transfer{
			ID:        uuid.New(),
			Kind:      models.TransferKindAirdrop,
			Target:    owner.Ptr(),
			Amount:    amount,
			CreatedAt: s.clock(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to airdrop: %w", err)
	}
	s.logger.Info("wallet airdrop", zap.String("wallet", owner.String()), zap.Uint64("amount", amount))
	return &WalletBalance{Address: owner, Lamports: balance, SOL: LamportsToSOL(balance)}, nil
}

func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0).Div(decimal.NewFromInt(LamportsPerSOL))
}

func debitWallet(tx repository.Tx, owner models.Address, amount uint64) error {
	wallet, err := tx.GetWallet(owner)
	if err != nil {
		return err
	}
	if wallet.Balance < amount {
		return fmt.Errorf("wallet %s holds %d, needs %d: %w", owner, wallet.Balance, amount, ErrInsufficientFunds)
	}
	wallet.Balance -= amount
	return tx.PutWallet(wallet)
}

func creditWallet(tx repository.Tx, owner models.Address, amount uint64) error {
	wallet, err := tx.GetWallet(owner)
	if err != nil {
		return err
	}
	balance, err := addVolume(wallet.Balance, amount)
	if err != nil {
		return err
	}
	wallet.Balance = balance
	return tx.PutWallet(wallet)
}
