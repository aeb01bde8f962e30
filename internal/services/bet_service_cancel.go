package services

import (
	"context"

	"wager-ledger/internal/events"
	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"go.uber.org/zap"
)

// CancelBet withdraws an unmatched bet and refunds the whole treasury to the
// creator. Expired bets can still be cancelled.
func (s *BetService) CancelBet(
	ctx context.Context,
	caller models.Address,
	betAddr models.Address,
) (*models.Bet, error) {
	now := s.clock()

	var bet *models.Bet
	var refunded uint64
	err := s.store.Atomically(ctx, func(tx repository.Tx) error {
		b, err := s.loadBet(tx, betAddr)
		if err != nil {
			return err
		}
		if b.Creator != caller {
			return ErrUnauthorized
		}
		if b.Status != models.BetStatusOpen {
			return ErrInvalidBetStatus
		}
		if b.Acceptor != nil {
			return ErrBetAlreadyAccepted
		}

		profile, err := s.ownedProfile(tx, caller)
		if err != nil {
			return err
		}
		if profile.BetsCancelled, err = incCount(profile.BetsCancelled); err != nil {
			return err
		}

		treasuryAddr, _, err := s.deriver.TreasuryAddress(b.Address)
		if err != nil {
			return err
		}
		escrow, err := LoadEscrow(tx, treasuryAddr, now)
		if err != nil {
			return err
		}
		if refunded, err = escrow.Drain(b.Creator, models.TransferKindRefund); err != nil {
			return err
		}

		b.Status = models.BetStatusCancelled
		if err := tx.PutProfile(profile); err != nil {
			return err
		}
		bet = b
		return tx.PutBet(b)
	})
	if err != nil {
		return nil, s.reject("cancel", err)
	}

	s.logger.Info("bet cancelled",
		zap.String("bet", bet.Address.String()),
		zap.String("creator", caller.String()),
		zap.Uint64("refunded", refunded))
	s.metrics.Transition("cancelled")
	s.metrics.Escrow("out", refunded)
	s.publish(ctx, events.BetCancelled, bet, caller, refunded)
	return bet, nil
}
