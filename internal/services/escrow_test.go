package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"
)

func TestEscrowCustody(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	payer, winner := wallet(1), wallet(2)
	bet, treasuryAddr := wallet(10), wallet(11)

	seed := func(tx repository.Tx) error {
		return creditWallet(tx, payer, 500)
	}
	if err := store.Atomically(ctx, seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	err := store.Atomically(ctx, func(tx repository.Tx) error {
		e, err := OpenEscrow(tx, treasuryAddr, bet, 254, now)
		if err != nil {
			return err
		}
		if err := e.Deposit(payer, 0); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("zero deposit: %v", err)
		}
		if err := e.Deposit(payer, 600); !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("overdrawn deposit: %v", err)
		}
		if err := e.Deposit(payer, 300); err != nil {
			return err
		}
		if err := e.Payout(winner, 301, models.TransferKindPayout); !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("payout above balance: %v", err)
		}
		if e.Balance() != 300 {
			t.Errorf("failed payout changed balance to %d", e.Balance())
		}
		if err := e.Close(); !errors.Is(err, ErrInvalidBetStatus) {
			t.Errorf("closing a funded treasury: %v", err)
		}
		if err := e.Payout(winner, 100, models.TransferKindPayout); err != nil {
			return err
		}
		drained, err := e.Drain(winner, models.TransferKindPayout)
		if err != nil {
			return err
		}
		if drained != 200 {
			t.Errorf("drained %d, want 200", drained)
		}
		if _, err := OpenEscrow(tx, treasuryAddr, bet, 254, now); !errors.Is(err, ErrInvalidBetStatus) {
			t.Errorf("reopening treasury: %v", err)
		}
		return e.Close()
	})
	if err != nil {
		t.Fatalf("escrow flow failed: %v", err)
	}

	payerWallet, _ := store.GetWallet(ctx, payer)
	winnerWallet, _ := store.GetWallet(ctx, winner)
	if payerWallet.Balance != 200 || winnerWallet.Balance != 300 {
		t.Errorf("balances payer=%d winner=%d", payerWallet.Balance, winnerWallet.Balance)
	}
	if _, err := store.GetTreasury(ctx, treasuryAddr); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("closed treasury still present: %v", err)
	}
	transfers, _ := store.ListTransfers(ctx, bet)
	if len(transfers) != 3 {
		t.Errorf("journal has %d lines, want 3", len(transfers))
	}
}
