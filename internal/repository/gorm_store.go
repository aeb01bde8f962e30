package repository

import (
	"context"
	"errors"
	"fmt"

	"wager-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomically runs fn in a database transaction. Rows read through the Tx are
// locked for update on Postgres so concurrent operations on the same bet queue.
func (s *GormStore) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	lock := s.db.Dialector.Name() == "postgres"
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{db: db, lock: lock})
	})
}

func (s *GormStore) GetBet(ctx context.Context, addr models.Address) (*models.Bet, error) {
	var bet models.Bet
	if err := first(s.db.WithContext(ctx), &bet, addr); err != nil {
		return nil, err
	}
	return &bet, nil
}

func (s *GormStore) GetTreasury(ctx context.Context, addr models.Address) (*models.Treasury, error) {
	var treasury models.Treasury
	if err := first(s.db.WithContext(ctx), &treasury, addr); err != nil {
		return nil, err
	}
	return &treasury, nil
}

func (s *GormStore) GetProfile(ctx context.Context, addr models.Address) (*models.Profile, error) {
	var profile models.Profile
	if err := first(s.db.WithContext(ctx), &profile, addr); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *GormStore) GetWallet(ctx context.Context, addr models.Address) (*models.Wallet, error) {
	return getWallet(s.db.WithContext(ctx), addr)
}

// ListBets returns bets matching the filter, newest first
func (s *GormStore) ListBets(ctx context.Context, filter models.BetFilter) ([]models.Bet, error) {
	query := s.db.WithContext(ctx).Model(&models.Bet{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Visibility != nil {
		query = query.Where("visibility = ?", *filter.Visibility)
	}
	if filter.Participant != nil {
		query = query.Where("creator = ? OR acceptor = ?", *filter.Participant, *filter.Participant)
	}

	var bets []models.Bet
	err := query.
		Order("created_at DESC").
		Order("address ASC").
		Limit(listLimit(filter.Limit)).
		Offset(filter.Offset).
		Find(&bets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

func (s *GormStore) ListReclaimableBets(ctx context.Context, limit int) ([]models.Bet, error) {
	var bets []models.Bet
	err := s.db.WithContext(ctx).
		Model(&models.Bet{}).
		Joins("JOIN bet_treasuries ON bet_treasuries.bet = bets.address").
		Where("bets.status IN (?, ?) AND bet_treasuries.balance = 0",
			models.BetStatusCancelled, models.BetStatusResolved).
		Order("bets.created_at ASC").
		Limit(listLimit(limit)).
		Find(&bets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reclaimable bets: %w", err)
	}
	return bets, nil
}

func (s *GormStore) ListFriends(ctx context.Context, owner models.Address) ([]models.Friend, error) {
	var friends []models.Friend
	err := s.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", owner, owner).
		Order("created_at DESC").
		Find(&friends).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

func (s *GormStore) ListTransfers(ctx context.Context, bet models.Address) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := s.db.WithContext(ctx).
		Where("bet = ?", bet).
		Order("created_at ASC").
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

type gormTx struct {
	db   *gorm.DB
	lock bool
}

func (t *gormTx) locked() *gorm.DB {
	if t.lock {
		return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return t.db
}

func (t *gormTx) GetBet(addr models.Address) (*models.Bet, error) {
	var bet models.Bet
	if err := first(t.locked(), &bet, addr); err != nil {
		return nil, err
	}
	return &bet, nil
}

func (t *gormTx) PutBet(bet *models.Bet) error {
	return upsert(t.db, bet)
}

func (t *gormTx) DeleteBet(addr models.Address) error {
	return remove(t.db, &models.Bet{}, addr)
}

func (t *gormTx) GetTreasury(addr models.Address) (*models.Treasury, error) {
	var treasury models.Treasury
	if err := first(t.locked(), &treasury, addr); err != nil {
		return nil, err
	}
	return &treasury, nil
}

func (t *gormTx) PutTreasury(treasury *models.Treasury) error {
	return upsert(t.db, treasury)
}

func (t *gormTx) DeleteTreasury(addr models.Address) error {
	return remove(t.db, &models.Treasury{}, addr)
}

func (t *gormTx) GetProfile(addr models.Address) (*models.Profile, error) {
	var profile models.Profile
	if err := first(t.locked(), &profile, addr); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (t *gormTx) PutProfile(profile *models.Profile) error {
	return upsert(t.db, profile)
}

func (t *gormTx) GetFriend(addr models.Address) (*models.Friend, error) {
	var friend models.Friend
	if err := first(t.locked(), &friend, addr); err != nil {
		return nil, err
	}
	return &friend, nil
}

func (t *gormTx) PutFriend(friend *models.Friend) error {
	return upsert(t.db, friend)
}

// GetWallet materializes a zero wallet first so the locking read always has a
// row to lock, even for a wallet's first credit.
func (t *gormTx) GetWallet(addr models.Address) (*models.Wallet, error) {
	err := t.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Wallet{Address: addr}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure wallet %s: %w", addr, err)
	}
	return getWallet(t.locked(), addr)
}

func (t *gormTx) PutWallet(wallet *models.Wallet) error {
	return upsert(t.db, wallet)
}

func (t *gormTx) AppendTransfer(transfer *models.Transfer) error {
	if err := t.db.Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to append transfer: %w", err)
	}
	return nil
}

func first(db *gorm.DB, dest interface{}, addr models.Address) error {
	err := db.Where("address = ?", addr).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %T %s: %w", dest, addr, err)
	}
	return nil
}

func getWallet(db *gorm.DB, addr models.Address) (*models.Wallet, error) {
	var wallet models.Wallet
	err := first(db, &wallet, addr)
	if errors.Is(err, ErrNotFound) {
		return &models.Wallet{Address: addr}, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func upsert(db *gorm.DB, value interface{}) error {
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error; err != nil {
		return fmt.Errorf("failed to save %T: %w", value, err)
	}
	return nil
}

func remove(db *gorm.DB, model interface{}, addr models.Address) error {
	result := db.Where("address = ?", addr).Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %T %s: %w", model, addr, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
