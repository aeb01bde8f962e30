package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"go.uber.org/zap"
)

// ProfileService manages the per-participant ledgers. Counters are only ever
// changed by the bet lifecycle.
type ProfileService struct {
	store   repository.Store
	deriver AddressDeriver
	logger  *zap.Logger
	clock   func() time.Time
}

func NewProfileService(store repository.Store, deriver AddressDeriver, logger *zap.Logger) *ProfileService {
	return &ProfileService{store: store, deriver: deriver, logger: logger, clock: time.Now}
}

// CreateProfile registers a participant with zeroed counters
func (s *ProfileService) CreateProfile(ctx context.Context, owner models.Address, name string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	fixedName, err := models.NewName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	addr, bump, err := s.deriver.ProfileAddress(owner)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		Address:   addr,
		Owner:     owner,
		Name:      fixedName,
		CreatedAt: s.clock().Unix(),
		Version:   models.ProfileVersion,
		Bump:      bump,
	}
	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		if _, err := tx.GetProfile(addr); err == nil {
			return ErrProfileExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return tx.PutProfile(profile)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile created", zap.String("owner", owner.String()), zap.String("profile", addr.String()))
	return profile, nil
}

// GetProfile returns the owner's profile
func (s *ProfileService) GetProfile(ctx context.Context, owner models.Address) (*models.Profile, error) {
	addr, _, err := s.deriver.ProfileAddress(owner)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.GetProfile(ctx, addr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// loadOwnedProfile reads the profile derived for owner inside tx.
func loadOwnedProfile(tx repository.Tx, deriver AddressDeriver, owner models.Address) (*models.Profile, error) {
	addr, _, err := deriver.ProfileAddress(owner)
	if err != nil {
		return nil, err
	}
	profile, err := tx.GetProfile(addr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if profile.Owner != owner {
		return nil, ErrInvalidProfileOwner
	}
	return profile, nil
}
