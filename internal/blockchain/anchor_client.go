package blockchain

import (
	"context"
	"errors"
	"fmt"

	"wager-ledger/internal/models"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrForeignAccount  = errors.New("account is not owned by the wager program")
)

// ChainRPC is the part of the RPC client the reader needs.
type ChainRPC interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

// AnchorClient reads wager program accounts from a Solana cluster.
type AnchorClient struct {
	rpcClient ChainRPC
	rpcURL    string
	deriver   *Deriver
	logger    *zap.Logger
}

// NewAnchorClient creates a reader against the given RPC endpoint
func NewAnchorClient(rpcURL string, deriver *Deriver, logger *zap.Logger) *AnchorClient {
	c := NewAnchorClientWithRPC(rpc.New(rpcURL), deriver, logger)
	c.rpcURL = rpcURL
	return c
}

func NewAnchorClientWithRPC(client ChainRPC, deriver *Deriver, logger *zap.Logger) *AnchorClient {
	return &AnchorClient{rpcClient: client, deriver: deriver, logger: logger}
}

// GetBet fetches and decodes a bet account, migrating legacy layouts
func (c *AnchorClient) GetBet(ctx context.Context, addr models.Address) (*models.Bet, error) {
	data, err := c.fetch(ctx, addr)
	if err != nil {
		return nil, err
	}
	bet, err := DecodeBet(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize bet %s: %w", addr, err)
	}
	bet.Address = addr
	return bet, nil
}

// GetProfile fetches and decodes the profile account at addr
func (c *AnchorClient) GetProfile(ctx context.Context, addr models.Address) (*models.Profile, error) {
	data, err := c.fetch(ctx, addr)
	if err != nil {
		return nil, err
	}
	profile, err := DecodeProfile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize profile %s: %w", addr, err)
	}
	profile.Address = addr
	return profile, nil
}

// GetProfileByOwner derives the owner's profile address and fetches it
func (c *AnchorClient) GetProfileByOwner(ctx context.Context, owner models.Address) (*models.Profile, error) {
	addr, _, err := c.deriver.ProfileAddress(owner)
	if err != nil {
		return nil, err
	}
	return c.GetProfile(ctx, addr)
}

func (c *AnchorClient) fetch(ctx context.Context, addr models.Address) ([]byte, error) {
	accountInfo, err := c.rpcClient.GetAccountInfo(ctx, solana.PublicKeyFromBytes(addr[:]))
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", addr, err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, ErrAccountNotFound
	}
	if !accountInfo.Value.Owner.Equals(c.deriver.ProgramID()) {
		c.logger.Debug("account owner mismatch",
			zap.String("account", addr.String()),
			zap.String("owner", accountInfo.Value.Owner.String()))
		return nil, ErrForeignAccount
	}
	return accountInfo.Value.Data.GetBinary(), nil
}
