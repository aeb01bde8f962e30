package services

import (
	"context"
	"fmt"

	"wager-ledger/internal/events"
	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"go.uber.org/zap"
)

// DeleteBet reclaims the records of a finished bet. Anyone may call it; the
// record deposit always goes back to the creator.
func (s *BetService) DeleteBet(
	ctx context.Context,
	caller models.Address,
	betAddr models.Address,
	guard models.BetGuard,
) error {
	now := s.clock()

	var bet *models.Bet
	err := s.store.Atomically(ctx, func(tx repository.Tx) error {
		b, err := s.loadBet(tx, betAddr)
		if err != nil {
			return err
		}
		if err := checkGuard(b, guard); err != nil {
			return err
		}
		if !b.Status.IsTerminal() {
			return ErrInvalidBetStatus
		}

		treasuryAddr, _, err := s.deriver.TreasuryAddress(b.Address)
		if err != nil {
			return err
		}
		escrow, err := LoadEscrow(tx, treasuryAddr, now)
		if err != nil {
			return err
		}
		if escrow.Balance() != 0 {
			return fmt.Errorf("treasury still holds %d: %w", escrow.Balance(), ErrInvalidBetStatus)
		}
		if err := escrow.Close(); err != nil {
			return err
		}
		if err := tx.DeleteBet(b.Address); err != nil {
			return err
		}

		if b.RecordDeposit > 0 {
			if err := creditWallet(tx, b.Creator, b.RecordDeposit); err != nil {
				return err
			}
			err := appendTransfer(tx, b.Address, models.TransferKindRecordRefund, nil, b.Creator.Ptr(), b.RecordDeposit, now)
			if err != nil {
				return err
			}
		}
		bet = b
		return nil
	})
	if err != nil {
		return s.reject("delete", err)
	}

	s.logger.Info("bet deleted",
		zap.String("bet", bet.Address.String()),
		zap.String("caller", caller.String()),
		zap.Uint64("record_deposit", bet.RecordDeposit))
	s.metrics.Transition("deleted")
	s.publish(ctx, events.BetDeleted, bet, caller, bet.RecordDeposit)
	return nil
}
