package services

import (
	"context"
	"errors"

	"wager-ledger/internal/events"
	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"go.uber.org/zap"
)

// AcceptBet matches an open bet. The acceptor escrows
// floor(stake * odds_win / odds_lose).
func (s *BetService) AcceptBet(
	ctx context.Context,
	acceptor models.Address,
	betAddr models.Address,
	guard models.BetGuard,
) (*models.Bet, error) {
	now := s.clock()

	var bet *models.Bet
	var deposit uint64
	err := s.store.Atomically(ctx, func(tx repository.Tx) error {
		b, err := s.loadBet(tx, betAddr)
		if err != nil {
			return err
		}
		if err := checkGuard(b, guard); err != nil {
			return err
		}
		if b.Creator == acceptor {
			return ErrCannotAcceptOwnBet
		}
		if b.Status != models.BetStatusOpen {
			return ErrInvalidBetStatus
		}
		if b.Acceptor != nil {
			return ErrBetAlreadyAccepted
		}
		if now.Unix() >= b.ExpiresAt {
			return ErrBetExpired
		}
		// A referee cannot take a side in the bet they decide.
		if b.Referee == acceptor {
			return ErrUnauthorized
		}
		if err := s.checkVisibility(tx, b, acceptor); err != nil {
			return err
		}

		profile, err := s.ownedProfile(tx, acceptor)
		if err != nil {
			return err
		}
		if deposit, err = AcceptorStake(b); err != nil {
			return err
		}
		if profile.BetsAccepted, err = incCount(profile.BetsAccepted); err != nil {
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
		// A stake that rounds down to nothing is matched without a transfer.
		if deposit > 0 {
			if err := escrow.Deposit(acceptor, deposit); err != nil {
				return err
			}
		}

		acceptedAt := now.Unix()
		b.Acceptor = acceptor.Ptr()
		b.AcceptorName = profile.Name
		b.Status = models.BetStatusAccepted
		b.AcceptedAt = &acceptedAt
		if err := tx.PutProfile(profile); err != nil {
			return err
		}
		bet = b
		return tx.PutBet(b)
	})
	if err != nil {
		return nil, s.reject("accept", err)
	}

	s.logger.Info("bet accepted",
		zap.String("bet", bet.Address.String()),
		zap.String("acceptor", acceptor.String()),
		zap.Uint64("deposit", deposit))
	s.metrics.Transition("accepted")
	s.metrics.Escrow("in", deposit)
	s.publish(ctx, events.BetAccepted, bet, acceptor, deposit)
	return bet, nil
}

// checkVisibility decides whether acceptor may take the bet.
func (s *BetService) checkVisibility(tx repository.Tx, bet *models.Bet, acceptor models.Address) error {
	switch bet.Visibility {
	case models.VisibilityPublic:
		return nil
	case models.VisibilityPrivate:
		if bet.PrivateRecipient == nil || *bet.PrivateRecipient != acceptor {
			return ErrUnauthorized
		}
		return nil
	case models.VisibilityFriendsOnly:
		addr, _, err := s.deriver.FriendAddress(bet.Creator, acceptor)
		if err != nil {
			return err
		}
		friend, err := tx.GetFriend(addr)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		if err != nil {
			return err
		}
		if !friend.IsAccepted() {
			return ErrUnauthorized
		}
		return nil
	default:
		return ErrUnauthorized
	}
}
