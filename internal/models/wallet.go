package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is a participant's spendable balance outside of any escrow.
type Wallet struct {
	Address   Address   `gorm:"primaryKey;size:44" json:"address"`
	Balance   uint64    `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) Clone() *Wallet {
	c := *w
	return &c
}

type TransferKind string

const (
	TransferKindDeposit       TransferKind = "DEPOSIT"
	TransferKindPayout        TransferKind = "PAYOUT"
	TransferKindRefund        TransferKind = "REFUND"
	TransferKindRecordDeposit TransferKind = "RECORD_DEPOSIT"
	TransferKindRecordRefund  TransferKind = "RECORD_REFUND"
	TransferKindAirdrop       TransferKind = "AIRDROP"
)

// Transfer is one journal line of funds moving between a wallet and a bet.
type Transfer struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Bet       *Address     `gorm:"size:44;index" json:"bet"`
	Kind      TransferKind `gorm:"size:32;not null" json:"kind"`
	Source    *Address     `gorm:"size:44" json:"source"`
	Target    *Address     `gorm:"size:44" json:"target"`
	Amount    uint64       `gorm:"not null" json:"amount"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Transfer) TableName() string {
	return "bet_transfers"
}

type AirdropRequest struct {
	Amount uint64 `json:"amount" binding:"required"`
}
