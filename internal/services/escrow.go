package services

import (
	"errors"
	"fmt"
	"time"

	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"github.com/google/uuid"
)

// Escrow is the custody balance of one bet, bound to an open transaction.
// Every movement is mirrored in a participant wallet and the transfer journal.
type Escrow struct {
	tx       repository.Tx
	treasury *models.Treasury
	now      time.Time
}

// OpenEscrow creates an empty treasury for a new bet.
func OpenEscrow(tx repository.Tx, addr, bet models.Address, bump uint8, now time.Time) (*Escrow, error) {
	if _, err := tx.GetTreasury(addr); err == nil {
		return nil, fmt.Errorf("treasury %s already exists: %w", addr, ErrInvalidBetStatus)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	treasury := &models.Treasury{Address: addr, Bet: bet, Bump: bump}
	if err := tx.PutTreasury(treasury); err != nil {
		return nil, err
	}
	return &Escrow{tx: tx, treasury: treasury, now: now}, nil
}

// LoadEscrow binds an existing treasury to tx.
func LoadEscrow(tx repository.Tx, addr models.Address, now time.Time) (*Escrow, error) {
	treasury, err := tx.GetTreasury(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to load treasury %s: %w", addr, err)
	}
	return &Escrow{tx: tx, treasury: treasury, now: now}, nil
}

func (e *Escrow) Balance() uint64 {
	return e.treasury.Balance
}

// Deposit moves amount from the payer's wallet into the treasury.
func (e *Escrow) Deposit(from models.Address, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	balance, err := addVolume(e.treasury.Balance, amount)
	if err != nil {
		return err
	}
	if err := debitWallet(e.tx, from, amount); err != nil {
		return err
	}
	e.treasury.Balance = balance
	if err := e.tx.PutTreasury(e.treasury); err != nil {
		return err
	}
	return e.journal(models.TransferKindDeposit, from.Ptr(), nil, amount)
}

// Payout moves amount from the treasury to the recipient's wallet. It fails
// without effect when the treasury holds less than amount.
func (e *Escrow) Payout(to models.Address, amount uint64, kind models.TransferKind) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if amount > e.treasury.Balance {
		return fmt.Errorf("treasury %s holds %d, payout %d: %w",
			e.treasury.Address, e.treasury.Balance, amount, ErrInsufficientFunds)
	}
	if err := creditWallet(e.tx, to, amount); err != nil {
		return err
	}
	e.treasury.Balance -= amount
	if err := e.tx.PutTreasury(e.treasury); err != nil {
		return err
	}
	return e.journal(kind, nil, to.Ptr(), amount)
}

// Drain pays the whole balance to the recipient and returns the amount moved.
func (e *Escrow) Drain(to models.Address, kind models.TransferKind) (uint64, error) {
	amount := e.treasury.Balance
	if amount == 0 {
		return 0, nil
	}
	if err := e.Payout(to, amount, kind); err != nil {
		return 0, err
	}
	return amount, nil
}

// Close removes an empty treasury.
func (e *Escrow) Close() error {
	if e.treasury.Balance != 0 {
		return ErrInvalidBetStatus
	}
	return e.tx.DeleteTreasury(e.treasury.Address)
}

func (e *Escrow) journal(kind models.TransferKind, from, to *models.Address, amount uint64) error {
	return appendTransfer(e.tx, e.treasury.Bet, kind, from, to, amount, e.now)
}

func appendTransfer(
	tx repository.Tx,
	bet models.Address,
	kind models.TransferKind,
	from, to *models.Address,
	amount uint64,
	now time.Time,
) error {
	return tx.AppendTransfer(&models.Transfer{
		ID:        uuid.New(),
		Bet:       bet.Ptr(),
		Kind:      kind,
		Source:    from,
		Target:    to,
		Amount:    amount,
		CreatedAt: now,
	})
}
