package repository

import (
	"context"
	"errors"
	"testing"

	"wager-ledger/internal/models"
)

func TestMemoryStoreStagesWrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	addr := testAddress(1)
	boom := errors.New("boom")

	err := store.Atomically(ctx, func(tx Tx) error {
		if err := tx.PutBet(testBet(addr, testAddress(2), models.BetStatusOpen, 10)); err != nil {
			return err
		}
		// visible inside the same operation
		if _, err := tx.GetBet(addr); err != nil {
			t.Errorf("staged bet not visible: %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := store.GetBet(ctx, addr); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected discarded write, got %v", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	addr := testAddress(1)

	err := store.Atomically(ctx, func(tx Tx) error {
		return tx.PutBet(testBet(addr, testAddress(2), models.BetStatusOpen, 10))
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	bet, _ := store.GetBet(ctx, addr)
	bet.Status = models.BetStatusResolved
	bet.Winner = testAddress(2).Ptr()

	again, _ := store.GetBet(ctx, addr)
	if again.Status != models.BetStatusOpen || again.Winner != nil {
		t.Errorf("stored bet mutated through a returned copy")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	addr := testAddress(1)

	err := store.Atomically(ctx, func(tx Tx) error {
		return tx.PutTreasury(&models.Treasury{Address: addr, Bet: testAddress(2)})
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	err = store.Atomically(ctx, func(tx Tx) error {
		if err := tx.DeleteTreasury(addr); err != nil {
			return err
		}
		if _, err := tx.GetTreasury(addr); !errors.Is(err, ErrNotFound) {
			t.Errorf("deleted treasury still visible: %v", err)
		}
		return tx.DeleteTreasury(addr)
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
	if _, err := store.GetTreasury(ctx, addr); err != nil {
		t.Errorf("failed operation should not have deleted the treasury: %v", err)
	}
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Atomically(ctx, func(tx Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Errorf("expected context.Canceled without running fn, got %v (called=%v)", err, called)
	}
}
