package jobs

import (
	"context"
	"fmt"

	"wager-ledger/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reapBatch = 100

// Reclaimer is the part of the bet service the reaper drives.
type Reclaimer interface {
	ListReclaimableBets(ctx context.Context, limit int) ([]models.Bet, error)
	DeleteBet(ctx context.Context, caller models.Address, bet models.Address, guard models.BetGuard) error
}

// BetReaper periodically deletes finished bets whose treasury is empty,
// returning each record deposit to its creator.
type BetReaper struct {
	bets    Reclaimer
	sweeper models.Address
	logger  *zap.Logger
	cron    *cron.Cron
}

// NewBetReaper creates a reaper that calls DeleteBet as sweeper
func NewBetReaper(bets Reclaimer, sweeper models.Address, logger *zap.Logger) *BetReaper {
	return &BetReaper{
		bets:    bets,
		sweeper: sweeper,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start schedules the sweep and starts the cron runner
func (r *BetReaper) Start(ctx context.Context, schedule string) error {
	_, err := r.cron.AddFunc(schedule, func() {
		n, err := r.Sweep(ctx)
		if err != nil {
			r.logger.Error("bet reaper sweep failed", zap.Error(err), zap.Int("deleted", n))
			return
		}
		if n > 0 {
			r.logger.Info("bet reaper sweep finished", zap.Int("deleted", n))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reaper schedule %q: %w", schedule, err)
	}

	r.cron.Start()
	r.logger.Info("bet reaper started", zap.String("schedule", schedule))
	return nil
}

// Stop waits for a running sweep to finish
func (r *BetReaper) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("bet reaper stopped")
}

// Sweep deletes one batch of reclaimable bets and reports how many went.
// A bet that fails to delete is logged and skipped.
func (r *BetReaper) Sweep(ctx context.Context) (int, error) {
	bets, err := r.bets.ListReclaimableBets(ctx, reapBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list reclaimable bets: %w", err)
	}

	deleted := 0
	for _, bet := range bets {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		guard := models.BetGuard{Creator: bet.Creator.Ptr()}
		if err := r.bets.DeleteBet(ctx, r.sweeper, bet.Address, guard); err != nil {
			r.logger.Warn("failed to delete bet",
				zap.String("bet", bet.Address.String()),
				zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}
