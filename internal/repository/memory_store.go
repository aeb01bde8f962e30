package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"wager-ledger/internal/models"
)

// MemoryStore keeps every record in process memory. A single mutex
// serializes operations and writes are staged until the operation succeeds.
type MemoryStore struct {
	mu         sync.Mutex
	bets       table[models.Bet]
	treasuries table[models.Treasury]
	profiles   table[models.Profile]
	friends    table[models.Friend]
	wallets    table[models.Wallet]
	transfers  []models.Transfer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bets:       newTable((*models.Bet).Clone),
		treasuries: newTable((*models.Treasury).Clone),
		profiles:   newTable((*models.Profile).Clone),
		friends:    newTable((*models.Friend).Clone),
		wallets:    newTable((*models.Wallet).Clone),
	}
}

func (s *MemoryStore) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		bets:       s.bets.stage(),
		treasuries: s.treasuries.stage(),
		profiles:   s.profiles.stage(),
		friends:    s.friends.stage(),
		wallets:    s.wallets.stage(),
	}
	if err := fn(tx); err != nil {
		return err
	}

	tx.bets.commit()
	tx.treasuries.commit()
	tx.profiles.commit()
	tx.friends.commit()
	tx.wallets.commit()
	s.transfers = append(s.transfers, tx.transfers...)
	return nil
}

func (s *MemoryStore) GetBet(ctx context.Context, addr models.Address) (*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bets.get(addr)
}

func (s *MemoryStore) GetTreasury(ctx context.Context, addr models.Address) (*models.Treasury, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.treasuries.get(addr)
}

func (s *MemoryStore) GetProfile(ctx context.Context, addr models.Address) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles.get(addr)
}

func (s *MemoryStore) GetWallet(ctx context.Context, addr models.Address) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wallet, err := s.wallets.get(addr)
	if err == ErrNotFound {
		return &models.Wallet{Address: addr}, nil
	}
	return wallet, err
}

func (s *MemoryStore) ListBets(ctx context.Context, filter models.BetFilter) ([]models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bets []models.Bet
	for _, bet := range s.bets.rows {
		if filter.Status != nil && bet.Status != *filter.Status {
			continue
		}
		if filter.Visibility != nil && bet.Visibility != *filter.Visibility {
			continue
		}
		if filter.Participant != nil && !bet.IsParticipant(*filter.Participant) {
			continue
		}
		bets = append(bets, *bet.Clone())
	}
	sort.Slice(bets, func(i, j int) bool {
		if bets[i].CreatedAt != bets[j].CreatedAt {
			return bets[i].CreatedAt > bets[j].CreatedAt
		}
		return bets[i].Address.String() < bets[j].Address.String()
	})
	return page(bets, filter.Offset, listLimit(filter.Limit)), nil
}

func (s *MemoryStore) ListReclaimableBets(ctx context.Context, limit int) ([]models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bets []models.Bet
	for _, bet := range s.bets.rows {
		if !bet.Status.IsTerminal() {
			continue
		}
		reclaimable := true
		for _, treasury := range s.treasuries.rows {
			if treasury.Bet == bet.Address && treasury.Balance != 0 {
				reclaimable = false
				break
			}
		}
		if reclaimable {
			bets = append(bets, *bet.Clone())
		}
	}
	sort.Slice(bets, func(i, j int) bool { return bets[i].CreatedAt < bets[j].CreatedAt })
	return page(bets, 0, listLimit(limit)), nil
}

func (s *MemoryStore) ListFriends(ctx context.Context, owner models.Address) ([]models.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var friends []models.Friend
	for _, friend := range s.friends.rows {
		if friend.UserA == owner || friend.UserB == owner {
			friends = append(friends, *friend.Clone())
		}
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].CreatedAt > friends[j].CreatedAt })
	return friends, nil
}

func (s *MemoryStore) ListTransfers(ctx context.Context, bet models.Address) ([]models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var transfers []models.Transfer
	for _, transfer := range s.transfers {
		if transfer.Bet != nil && *transfer.Bet == bet {
			transfers = append(transfers, transfer)
		}
	}
	return transfers, nil
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

type table[T any] struct {
	rows  map[models.Address]*T
	clone func(*T) *T
}

func newTable[T any](clone func(*T) *T) table[T] {
	return table[T]{rows: make(map[models.Address]*T), clone: clone}
}

func (t *table[T]) get(addr models.Address) (*T, error) {
	row, ok := t.rows[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return t.clone(row), nil
}

func (t *table[T]) stage() *staged[T] {
	return &staged[T]{table: t, writes: make(map[models.Address]*T)}
}

// staged overlays pending writes on a table. A nil entry marks a delete.
type staged[T any] struct {
	table  *table[T]
	writes map[models.Address]*T
}

func (s *staged[T]) get(addr models.Address) (*T, error) {
	if row, ok := s.writes[addr]; ok {
		if row == nil {
			return nil, ErrNotFound
		}
		return s.table.clone(row), nil
	}
	return s.table.get(addr)
}

func (s *staged[T]) put(addr models.Address, row *T) {
	s.writes[addr] = s.table.clone(row)
}

func (s *staged[T]) remove(addr models.Address) error {
	if _, err := s.get(addr); err != nil {
		return err
	}
	s.writes[addr] = nil
	return nil
}

func (s *staged[T]) commit() {
	for addr, row := range s.writes {
		if row == nil {
			delete(s.table.rows, addr)
			continue
		}
		s.table.rows[addr] = row
	}
}

type memoryTx struct {
	bets       *staged[models.Bet]
	treasuries *staged[models.Treasury]
	profiles   *staged[models.Profile]
	friends    *staged[models.Friend]
	wallets    *staged[models.Wallet]
	transfers  []models.Transfer
}

func (t *memoryTx) GetBet(addr models.Address) (*models.Bet, error) {
	return t.bets.get(addr)
}

func (t *memoryTx) PutBet(bet *models.Bet) error {
	t.bets.put(bet.Address, bet)
	return nil
}

func (t *memoryTx) DeleteBet(addr models.Address) error {
	return t.bets.remove(addr)
}

func (t *memoryTx) GetTreasury(addr models.Address) (*models.Treasury, error) {
	return t.treasuries.get(addr)
}

func (t *memoryTx) PutTreasury(treasury *models.Treasury) error {
	t.treasuries.put(treasury.Address, treasury)
	return nil
}

func (t *memoryTx) DeleteTreasury(addr models.Address) error {
	return t.treasuries.remove(addr)
}

func (t *memoryTx) GetProfile(addr models.Address) (*models.Profile, error) {
	return t.profiles.get(addr)
}

func (t *memoryTx) PutProfile(profile *models.Profile) error {
	t.profiles.put(profile.Address, profile)
	return nil
}

func (t *memoryTx) GetFriend(addr models.Address) (*models.Friend, error) {
	return t.friends.get(addr)
}

func (t *memoryTx) PutFriend(friend *models.Friend) error {
	t.friends.put(friend.Address, friend)
	return nil
}

func (t *memoryTx) GetWallet(addr models.Address) (*models.Wallet, error) {
	wallet, err := t.wallets.get(addr)
	if err == ErrNotFound {
		return &models.Wallet{Address: addr}, nil
	}
	return wallet, err
}

func (t *memoryTx) PutWallet(wallet *models.Wallet) error {
	w := wallet.Clone()
	w.UpdatedAt = time.Now()
	t.wallets.put(w.Address, w)
	return nil
}

func (t *memoryTx) AppendTransfer(transfer *models.Transfer) error {
	c := *transfer
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	t.transfers = append(t.transfers, c)
	return nil
}
