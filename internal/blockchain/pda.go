package blockchain

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"wager-ledger/internal/models"

	"github.com/gagliardetto/solana-go"
)

// DefaultProgramID is the deployed wager program.
const DefaultProgramID = "8a6kHAGhMgMEJnhDEafuZf1JYc4a9rdWySJNQ311UhHD"

var (
	betSeed      = []byte("bet")
	treasurySeed = []byte("bet-treasury-")
	profileSeed  = []byte("profile-")
	friendSeed   = []byte("friend-")
)

// Deriver computes the program derived addresses every ledger record lives at.
type Deriver struct {
	programID solana.PublicKey
}

func NewDeriver(programID string) (*Deriver, error) {
	programPubkey, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program ID: %w", err)
	}
	return &Deriver{programID: programPubkey}, nil
}

func (d *Deriver) ProgramID() solana.PublicKey {
	return d.programID
}

// BetAddress derives the address of the creator's index-th bet.
func (d *Deriver) BetAddress(creator models.Address, index uint32) (models.Address, uint8, error) {
	indexBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(indexBytes, index)
	return d.find("bet", betSeed, creator[:], indexBytes)
}

func (d *Deriver) TreasuryAddress(bet models.Address) (models.Address, uint8, error) {
	return d.find("treasury", treasurySeed, bet[:])
}

func (d *Deriver) ProfileAddress(owner models.Address) (models.Address, uint8, error) {
	return d.find("profile", profileSeed, owner[:])
}

// FriendAddress is symmetric in its arguments: the smaller wallet is seeded first.
func (d *Deriver) FriendAddress(a, b models.Address) (models.Address, uint8, error) {
	lo, hi := SortPair(a, b)
	return d.find("friend", friendSeed, lo[:], hi[:])
}

// SortPair orders two wallets by their raw bytes.
func SortPair(a, b models.Address) (models.Address, models.Address) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

func (d *Deriver) find(kind string, seeds ...[]byte) (models.Address, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return models.Address{}, 0, fmt.Errorf("failed to derive %s PDA: %w", kind, err)
	}
	return models.Address(pda), bump, nil
}
