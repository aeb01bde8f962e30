package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wager-ledger/internal/blockchain"
	"wager-ledger/internal/events"
	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"go.uber.org/zap"
)

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *repository.MemoryStore
	deriver  *blockchain.Deriver
	bets     *BetService
	profiles *ProfileService
	friends  *FriendService
	wallets  *WalletService
	events   *recordingPublisher
	now      time.Time
}

func newFixture(t *testing.T, opts ...BetServiceOption) *fixture {
	t.Helper()
	deriver, err := blockchain.NewDeriver(blockchain.DefaultProgramID)
	if err != nil {
		t.Fatalf("NewDeriver failed: %v", err)
	}
	f := &fixture{
		t:       t,
		ctx:     context.Background(),
		store:   repository.NewMemoryStore(),
		deriver: deriver,
		events:  &recordingPublisher{},
		now:     time.Unix(1_700_000_000, 0),
	}
	clock := func() time.Time { return f.now }
	logger := zap.NewNop()

	opts = append([]BetServiceOption{WithClock(clock), WithPublisher(f.events)}, opts...)
	f.bets = NewBetService(f.store, deriver, logger, opts...)
	f.profiles = NewProfileService(f.store, deriver, logger)
	f.profiles.clock = clock
	f.friends = NewFriendService(f.store, deriver, logger)
	f.friends.clock = clock
	f.wallets = NewWalletService(f.store, logger)
	f.wallets.clock = clock
	return f
}

func wallet(b byte) models.Address {
	var a models.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// participant registers a profile and funds its wallet.
func (f *fixture) participant(b byte, name string, funds uint64) models.Address {
	f.t.Helper()
	owner := wallet(b)
	if _, err := f.profiles.CreateProfile(f.ctx, owner, name); err != nil {
		f.t.Fatalf("CreateProfile(%s) failed: %v", name, err)
	}
	if funds > 0 {
		if _, err := f.wallets.Airdrop(f.ctx, owner, funds); err != nil {
			f.t.Fatalf("Airdrop(%s) failed: %v", name, err)
		}
	}
	return owner
}

func (f *fixture) balance(owner models.Address) uint64 {
	f.t.Helper()
	w, err := f.wallets.GetBalance(f.ctx, owner)
	if err != nil {
		f.t.Fatalf("GetBalance failed: %v", err)
	}
	return w.Lamports
}

func (f *fixture) treasury(bet models.Address) uint64 {
	f.t.Helper()
	tr, err := f.bets.GetTreasury(f.ctx, bet)
	if err != nil {
		f.t.Fatalf("GetTreasury failed: %v", err)
	}
	return tr.Balance
}

func (f *fixture) profile(owner models.Address) *models.Profile {
	f.t.Helper()
	p, err := f.profiles.GetProfile(f.ctx, owner)
	if err != nil {
		f.t.Fatalf("GetProfile failed: %v", err)
	}
	return p
}

func (f *fixture) bet(addr models.Address) *models.Bet {
	f.t.Helper()
	b, err := f.bets.GetBet(f.ctx, addr)
	if err != nil {
		f.t.Fatalf("GetBet failed: %v", err)
	}
	return b
}

func (f *fixture) create(creator models.Address, stake, oddsWin, oddsLose uint64) *models.Bet {
	f.t.Helper()
	bet, err := f.bets.CreateBet(f.ctx, creator, f.request(stake, oddsWin, oddsLose))
	if err != nil {
		f.t.Fatalf("CreateBet failed: %v", err)
	}
	return bet
}

func (f *fixture) request(stake, oddsWin, oddsLose uint64) *models.CreateBetRequest {
	return &models.CreateBetRequest{
		StakeAmount: stake,
		Description: "it will rain tomorrow",
		RefereeKind: models.RefereeHonorSystem,
		Category:    models.CategoryWeather,
		OddsWin:     oddsWin,
		OddsLose:    oddsLose,
		ExpiresAt:   f.now.Add(24 * time.Hour).Unix(),
	}
}

func (f *fixture) accept(acceptor, bet models.Address) *models.Bet {
	f.t.Helper()
	b, err := f.bets.AcceptBet(f.ctx, acceptor, bet, models.BetGuard{})
	if err != nil {
		f.t.Fatalf("AcceptBet failed: %v", err)
	}
	return b
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BetEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.BetEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []events.BetEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.BetEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
