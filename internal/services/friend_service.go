package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"

	"go.uber.org/zap"
)

type FriendService struct {
	store   repository.Store
	deriver AddressDeriver
	logger  *zap.Logger
	clock   func() time.Time
}

func NewFriendService(store repository.Store, deriver AddressDeriver, logger *zap.Logger) *FriendService {
	return &FriendService{store: store, deriver: deriver, logger: logger, clock: time.Now}
}

// AddFriend records a friend request from user to friend.
func (s *FriendService) AddFriend(ctx context.Context, user, friend models.Address) (*models.Friend, error) {
	if user == friend {
		return nil, ErrInvalidProfileOwner
	}
	addr, bump, err := s.deriver.FriendAddress(user, friend)
	if err != nil {
		return nil, err
	}

	var relation *models.Friend
	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		userProfile, err := loadOwnedProfile(tx, s.deriver, user)
		if err != nil {
			return err
		}
		friendProfile, err := loadOwnedProfile(tx, s.deriver, friend)
		if err != nil {
			return err
		}
		if _, err := tx.GetFriend(addr); err == nil {
			return ErrFriendExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		relation = &models.Friend{
			Address:   addr,
			CreatedAt: s.clock().Unix(),
			Bump:      bump,
		}
		requester := side{userProfile, models.FriendStatusRequested}
		other := side{friendProfile, models.FriendStatusNone}
		if lessAddress(user, friend) {
			setSides(relation, requester, other)
		} else {
			setSides(relation, other, requester)
		}
		return tx.PutFriend(relation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("friend requested", zap.String("user", user.String()), zap.String("friend", friend.String()))
	return relation, nil
}

// AcceptFriend confirms the request the other party sent to user.
func (s *FriendService) AcceptFriend(ctx context.Context, user, other models.Address) (*models.Friend, error) {
	addr, _, err := s.deriver.FriendAddress(user, other)
	if err != nil {
		return nil, err
	}

	var relation *models.Friend
	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		f, err := tx.GetFriend(addr)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFriendNotFound
		}
		if err != nil {
			return err
		}

		var counterparty models.FriendStatus
		switch user {
		case f.UserA:
			counterparty = f.UserBStatus
		case f.UserB:
			counterparty = f.UserAStatus
		default:
			return ErrInvalidProfileOwner
		}
		if counterparty != models.FriendStatusRequested {
			return ErrInvalidBetStatus
		}

		f.UserAStatus = models.FriendStatusAccepted
		f.UserBStatus = models.FriendStatusAccepted
		relation = f
		return tx.PutFriend(f)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("friend accepted", zap.String("user", user.String()), zap.String("friend", other.String()))
	return relation, nil
}

// ListFriends returns every relation the owner is part of
func (s *FriendService) ListFriends(ctx context.Context, owner models.Address) ([]models.Friend, error) {
	friends, err := s.store.ListFriends(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

type side struct {
	profile *models.Profile
	status  models.FriendStatus
}

func setSides(f *models.Friend, a, b side) {
	f.UserA, f.UserAName, f.UserAStatus = a.profile.Owner, a.profile.Name, a.status
	f.UserB, f.UserBName, f.UserBStatus = b.profile.Owner, b.profile.Name, b.status
}

func lessAddress(a, b models.Address) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
