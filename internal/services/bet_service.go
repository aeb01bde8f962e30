package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wager-ledger/internal/events"
	"wager-ledger/internal/metrics"
	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"go.uber.org/zap"
)

// AddressDeriver computes the deterministic addresses of ledger records.
type AddressDeriver interface {
	BetAddress(creator models.Address, index uint32) (models.Address, uint8, error)
	TreasuryAddress(bet models.Address) (models.Address, uint8, error)
	ProfileAddress(owner models.Address) (models.Address, uint8, error)
	FriendAddress(a, b models.Address) (models.Address, uint8, error)
}

// BetService owns the bet lifecycle: every status change and every escrow
// movement happens inside one store operation.
type BetService struct {
	store         repository.Store
	deriver       AddressDeriver
	logger        *zap.Logger
	publisher     events.Publisher
	metrics       *metrics.Metrics
	clock         func() time.Time
	recordDeposit uint64
}

type BetServiceOption func(*BetService)

func WithClock(clock func() time.Time) BetServiceOption {
	return func(s *BetService) { s.clock = clock }
}

func WithPublisher(p events.Publisher) BetServiceOption {
	return func(s *BetService) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) BetServiceOption {
	return func(s *BetService) { s.metrics = m }
}

// WithRecordDeposit sets the lamports locked per bet record until deletion.
func WithRecordDeposit(lamports uint64) BetServiceOption {
	return func(s *BetService) { s.recordDeposit = lamports }
}

func NewBetService(
	store repository.Store,
	deriver AddressDeriver,
	logger *zap.Logger,
	opts ...BetServiceOption,
) *BetService {
	s := &BetService{
		store:     store,
		deriver:   deriver,
		logger:    logger,
		publisher: events.NopPublisher{},
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBet opens a bet at the creator's next derived address and escrows
// the stake.
func (s *BetService) CreateBet(
	ctx context.Context,
	creator models.Address,
	req *models.CreateBetRequest,
) (*models.Bet, error) {
	now := s.clock()

	if req.OddsWin == 0 || req.OddsLose == 0 {
		return nil, s.reject("create", ErrInvalidOdds)
	}
	referee, err := refereeFor(creator, req)
	if err != nil {
		return nil, s.reject("create", err)
	}
	if req.ExpiresAt <= now.Unix() {
		return nil, s.reject("create", ErrInvalidExpiration)
	}
	description, err := validateShape(creator, req)
	if err != nil {
		return nil, s.reject("create", err)
	}
	if req.StakeAmount == 0 {
		return nil, s.reject("create", ErrInvalidAmount)
	}

	var bet *models.Bet
	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		profile, err := s.ownedProfile(tx, creator)
		if err != nil {
			return err
		}

		betAddr, betBump, err := s.deriver.BetAddress(creator, profile.BetsCreated)
		if err != nil {
			return err
		}
		if _, err := tx.GetBet(betAddr); err == nil {
			return fmt.Errorf("bet %s already exists: %w", betAddr, ErrInvalidBetStatus)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		treasuryAddr, treasuryBump, err := s.deriver.TreasuryAddress(betAddr)
		if err != nil {
			return err
		}

		bet = &models.Bet{
			Address:     betAddr,
			Index:       profile.BetsCreated,
			Creator:     creator,
			CreatorName: profile.Name,
			Referee:     referee,
			RefereeKind: req.RefereeKind,
			StakeAmount: req.StakeAmount,
			OddsWin:     req.OddsWin,
			OddsLose:    req.OddsLose,
			Description: description,
			Category:    req.Category,
			Visibility:  req.Visibility,
			Status:      models.BetStatusOpen,
			CreatedAt:   now.Unix(),
			ExpiresAt:   req.ExpiresAt,
			Version:     models.BetVersion,
			Bump:        betBump,
		}
		if req.Visibility == models.VisibilityPrivate {
			bet.PrivateRecipient = req.PrivateRecipient
		}

		if s.recordDeposit > 0 {
			if err := debitWallet(tx, creator, s.recordDeposit); err != nil {
				return err
			}
			err := appendTransfer(tx, betAddr, models.TransferKindRecordDeposit, creator.Ptr(), nil, s.recordDeposit, now)
			if err != nil {
				return err
			}
			bet.RecordDeposit = s.recordDeposit
		}

		escrow, err := OpenEscrow(tx, treasuryAddr, betAddr, treasuryBump, now)
		if err != nil {
			return err
		}
		if err := escrow.Deposit(creator, req.StakeAmount); err != nil {
			return err
		}

		if profile.BetsCreated, err = incCount(profile.BetsCreated); err != nil {
			return err
		}
		if err := tx.PutProfile(profile); err != nil {
			return err
		}
		return tx.PutBet(bet)
	})
	if err != nil {
		return nil, s.reject("create", err)
	}

	s.logger.Info("bet created",
		zap.String("bet", bet.Address.String()),
		zap.String("creator", creator.String()),
		zap.Uint64("stake", bet.StakeAmount),
		zap.Uint64("odds_win", bet.OddsWin),
		zap.Uint64("odds_lose", bet.OddsLose))
	s.metrics.Transition("created")
	s.metrics.Escrow("in", bet.StakeAmount)
	s.publish(ctx, events.BetCreated, bet, creator, bet.StakeAmount)
	return bet, nil
}

// GetBet returns the bet stored at addr
func (s *BetService) GetBet(ctx context.Context, addr models.Address) (*models.Bet, error) {
	bet, err := s.store.GetBet(ctx, addr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return bet, nil
}

// GetTreasury returns the escrow balance record of a bet
func (s *BetService) GetTreasury(ctx context.Context, bet models.Address) (*models.Treasury, error) {
	addr, _, err := s.deriver.TreasuryAddress(bet)
	if err != nil {
		return nil, err
	}
	treasury, err := s.store.GetTreasury(ctx, addr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBetNotFound
	}
	return treasury, err
}

// ListOpenBets returns the public feed of bets still waiting for an acceptor
func (s *BetService) ListOpenBets(ctx context.Context, limit, offset int) ([]models.Bet, error) {
	status := models.BetStatusOpen
	visibility := models.VisibilityPublic
	return s.store.ListBets(ctx, models.BetFilter{
		Status:     &status,
		Visibility: &visibility,
		Limit:      limit,
		Offset:     offset,
	})
}

// ListParticipantBets returns bets the participant created or accepted
func (s *BetService) ListParticipantBets(ctx context.Context, participant models.Address, limit, offset int) ([]models.Bet, error) {
	return s.store.ListBets(ctx, models.BetFilter{
		Participant: &participant,
		Limit:       limit,
		Offset:      offset,
	})
}

func (s *BetService) ListTransfers(ctx context.Context, bet models.Address) ([]models.Transfer, error) {
	return s.store.ListTransfers(ctx, bet)
}

// ListReclaimableBets returns terminal bets whose records can be deleted
func (s *BetService) ListReclaimableBets(ctx context.Context, limit int) ([]models.Bet, error) {
	return s.store.ListReclaimableBets(ctx, limit)
}

func refereeFor(creator models.Address, req *models.CreateBetRequest) (models.Address, error) {
	switch req.RefereeKind {
	case models.RefereeHonorSystem:
		if req.Referee != nil && *req.Referee != creator {
			return models.Address{}, ErrInvalidRefereeType
		}
		return creator, nil
	case models.RefereeThirdParty:
		if req.Referee == nil || req.Referee.IsZero() {
			return models.Address{}, ErrInvalidRefereeType
		}
		return *req.Referee, nil
	default:
		return models.Address{}, ErrInvalidRefereeType
	}
}

func validateShape(creator models.Address, req *models.CreateBetRequest) (models.Description, error) {
	if !req.Category.Valid() {
		return models.Description{}, fmt.Errorf("%w: unknown category %d", ErrInvalidRequest, req.Category)
	}
	if !req.Visibility.Valid() {
		return models.Description{}, fmt.Errorf("%w: unknown visibility %d", ErrInvalidRequest, req.Visibility)
	}
	if req.Visibility == models.VisibilityPrivate {
		if req.PrivateRecipient == nil || req.PrivateRecipient.IsZero() {
			return models.Description{}, fmt.Errorf("%w: private bet needs a recipient", ErrInvalidRequest)
		}
		if *req.PrivateRecipient == creator {
			return models.Description{}, fmt.Errorf("%w: private recipient is the creator", ErrInvalidRequest)
		}
	}
	description, err := models.NewDescription(req.Description)
	if err != nil {
		return models.Description{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return description, nil
}

// ownedProfile loads the caller's profile and checks it belongs to them.
func (s *BetService) ownedProfile(tx repository.Tx, owner models.Address) (*models.Profile, error) {
	return loadOwnedProfile(tx, s.deriver, owner)
}

// checkGuard enforces the optional creator the caller expects the bet to have.
func checkGuard(bet *models.Bet, guard models.BetGuard) error {
	if guard.Creator != nil && *guard.Creator != bet.Creator {
		return ErrInvalidBetCreator
	}
	return nil
}

func (s *BetService) loadBet(tx repository.Tx, addr models.Address) (*models.Bet, error) {
	bet, err := tx.GetBet(addr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBetNotFound
	}
	return bet, err
}

func (s *BetService) reject(op string, err error) error {
	if betErr, ok := AsBetError(err); ok {
		s.metrics.Rejected(betErr.Name)
		s.logger.Debug("bet operation rejected",
			zap.String("op", op),
			zap.Int("code", betErr.Code),
			zap.String("name", betErr.Name))
		return err
	}
	s.logger.Debug("bet operation failed", zap.String("op", op), zap.Error(err))
	return err
}

// publish emits a lifecycle event. Delivery failures are logged only; the
// transition has already committed.
func (s *BetService) publish(ctx context.Context, kind events.BetEventType, bet *models.Bet, actor models.Address, amount uint64) {
	e := events.BetEvent{
		Type:     kind,
		Bet:      bet.Address.String(),
		Actor:    actor.String(),
		Creator:  bet.Creator.String(),
		Amount:   amount,
		TsUnixMs: s.clock().UnixMilli(),
	}
	if bet.Acceptor != nil {
		e.Acceptor = bet.Acceptor.String()
	}
	if bet.Winner != nil {
		e.Winner = bet.Winner.String()
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish bet event",
			zap.String("type", string(kind)),
			zap.String("bet", e.Bet),
			zap.Error(err))
	}
}
