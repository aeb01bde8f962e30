package services

import (
	"context"

	"wager-ledger/internal/events"
	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"go.uber.org/zap"
)

// ResolveBet records the referee's verdict, pays the entire treasury to the
// winner and books the result on both profiles.
func (s *BetService) ResolveBet(
	ctx context.Context,
	caller models.Address,
	betAddr models.Address,
	req *models.ResolveBetRequest,
) (*models.Bet, *Settlement, error) {
	now := s.clock()

	var bet *models.Bet
	var settlement *Settlement
	err := s.store.Atomically(ctx, func(tx repository.Tx) error {
		b, err := s.loadBet(tx, betAddr)
		if err != nil {
			return err
		}
		if err := checkGuard(b, req.BetGuard); err != nil {
			return err
		}
		if b.Status != models.BetStatusAccepted {
			return ErrInvalidBetStatus
		}
		if b.Acceptor == nil {
			return ErrBetNotAccepted
		}
		if caller != b.Referee {
			return ErrUnauthorized
		}

		creatorProfile, err := s.ownedProfile(tx, b.Creator)
		if err != nil {
			return err
		}
		acceptorProfile, err := s.ownedProfile(tx, *b.Acceptor)
		if err != nil {
			return err
		}
		if settlement, err = settle(b, creatorProfile, acceptorProfile, req.WinnerIsCreator); err != nil {
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
		if settlement.Disbursed, err = escrow.Drain(settlement.Winner, models.TransferKindPayout); err != nil {
			return err
		}

		resolvedAt := now.Unix()
		b.Winner = settlement.Winner.Ptr()
		b.Status = models.BetStatusResolved
		b.ResolvedAt = &resolvedAt

		if err := tx.PutProfile(creatorProfile); err != nil {
			return err
		}
		if err := tx.PutProfile(acceptorProfile); err != nil {
			return err
		}
		bet = b
		return tx.PutBet(b)
	})
	if err != nil {
		return nil, nil, s.reject("resolve", err)
	}

	s.logger.Info("bet resolved",
		zap.String("bet", bet.Address.String()),
		zap.String("referee", caller.String()),
		zap.String("winner", settlement.Winner.String()),
		zap.Uint64("payout", settlement.Payout),
		zap.Uint64("disbursed", settlement.Disbursed))
	s.metrics.Transition("resolved")
	s.metrics.Escrow("out", settlement.Disbursed)
	s.publish(ctx, events.BetResolved, bet, caller, settlement.Disbursed)
	return bet, settlement, nil
}
