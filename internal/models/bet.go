package models

import "fmt"

type BetStatus uint8

const (
	BetStatusOpen BetStatus = iota
	BetStatusAccepted
	BetStatusCancelled
	BetStatusResolved
)

func (s BetStatus) String() string {
	switch s {
	case BetStatusOpen:
		return "open"
	case BetStatusAccepted:
		return "accepted"
	case BetStatusCancelled:
		return "cancelled"
	case BetStatusResolved:
		return "resolved"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// IsTerminal reports whether no further transition other than deletion is possible.
func (s BetStatus) IsTerminal() bool {
	return s == BetStatusCancelled || s == BetStatusResolved
}

type RefereeKind uint8

const (
	RefereeHonorSystem RefereeKind = iota
	RefereeOracle
	RefereeThirdParty
	RefereeSmartContract
)

func (k RefereeKind) String() string {
	switch k {
	case RefereeHonorSystem:
		return "honor_system"
	case RefereeOracle:
		return "oracle"
	case RefereeThirdParty:
		return "third_party"
	case RefereeSmartContract:
		return "smart_contract"
	default:
		return fmt.Sprintf("referee(%d)", uint8(k))
	}
}

type Category uint8

const (
	CategorySports Category = iota
	CategoryPersonalGrowth
	CategoryPolitics
	CategoryCrypto
	CategoryWorldEvents
	CategoryEntertainment
	CategoryTechnology
	CategoryBusiness
	CategoryWeather
	CategoryOther
)

var categoryNames = [...]string{
	"sports", "personal_growth", "politics", "crypto", "world_events",
	"entertainment", "technology", "business", "weather", "other",
}

func (c Category) Valid() bool {
	return int(c) < len(categoryNames)
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityFriendsOnly
	VisibilityPrivate
)

func (v Visibility) Valid() bool {
	return v <= VisibilityPrivate
}

const BetVersion uint8 = 2

// Bet is a two-party wager held at a derived address.
type Bet struct {
	Address          Address     `gorm:"primaryKey;size:44" json:"address"`
	Index            uint32      `gorm:"not null" json:"index"`
	Creator          Address     `gorm:"size:44;not null;index" json:"creator"`
	CreatorName      Name        `json:"creator_name"`
	Acceptor         *Address    `gorm:"size:44;index" json:"acceptor"`
	AcceptorName     Name        `json:"acceptor_name"`
	Referee          Address     `gorm:"size:44;not null;index" json:"referee"`
	RefereeKind      RefereeKind `gorm:"not null" json:"referee_kind"`
	StakeAmount      uint64      `gorm:"not null" json:"stake_amount"`
	OddsWin          uint64      `gorm:"not null" json:"odds_win"`
	OddsLose         uint64      `gorm:"not null" json:"odds_lose"`
	Description      Description `json:"description"`
	Category         Category    `gorm:"not null;default:0" json:"category"`
	Visibility       Visibility  `gorm:"not null;default:0;index" json:"visibility"`
	PrivateRecipient *Address    `gorm:"size:44" json:"private_recipient"`
	Status           BetStatus   `gorm:"not null;default:0;index" json:"status"`
	Winner           *Address    `gorm:"size:44" json:"winner"`
	CreatedAt        int64       `gorm:"not null" json:"created_at"`
	AcceptedAt       *int64      `json:"accepted_at"`
	ResolvedAt       *int64      `json:"resolved_at"`
	ExpiresAt        int64       `gorm:"not null;index" json:"expires_at"`
	RecordDeposit    uint64      `gorm:"not null;default:0" json:"record_deposit"`
	Version          uint8       `gorm:"not null" json:"version"`
	Bump             uint8       `gorm:"not null" json:"bump"`
}

func (Bet) TableName() string {
	return "bets"
}

func (b *Bet) Clone() *Bet {
	c := *b
	c.Acceptor = cloneAddress(b.Acceptor)
	c.PrivateRecipient = cloneAddress(b.PrivateRecipient)
	c.Winner = cloneAddress(b.Winner)
	c.AcceptedAt = cloneInt64(b.AcceptedAt)
	c.ResolvedAt = cloneInt64(b.ResolvedAt)
	return &c
}

// IsParticipant reports whether addr is the creator or the acceptor.
func (b *Bet) IsParticipant(addr Address) bool {
	return b.Creator == addr || (b.Acceptor != nil && *b.Acceptor == addr)
}

// Treasury is the escrow account holding a bet's stakes.
type Treasury struct {
	Address Address `gorm:"primaryKey;size:44" json:"address"`
	Bet     Address `gorm:"size:44;not null;uniqueIndex" json:"bet"`
	Balance uint64  `gorm:"not null;default:0" json:"balance"`
	Bump    uint8   `gorm:"not null" json:"bump"`
}

func (Treasury) TableName() string {
	return "bet_treasuries"
}

func (t *Treasury) Clone() *Treasury {
	c := *t
	return &c
}

type CreateBetRequest struct {
	StakeAmount      uint64      `json:"stake_amount" binding:"required"`
	Description      string      `json:"description"`
	RefereeKind      RefereeKind `json:"referee_kind"`
	Referee          *Address    `json:"referee"`
	Category         Category    `json:"category"`
	OddsWin          uint64      `json:"odds_win"`
	OddsLose         uint64      `json:"odds_lose"`
	ExpiresAt        int64       `json:"expires_at"`
	Visibility       Visibility  `json:"visibility"`
	PrivateRecipient *Address    `json:"private_recipient"`
}

// BetGuard optionally pins the creator a caller expects the bet to have.
type BetGuard struct {
	Creator *Address `json:"creator"`
}

type ResolveBetRequest struct {
	BetGuard
	WinnerIsCreator bool `json:"winner_is_creator"`
}

type BetFilter struct {
	Status      *BetStatus
	Visibility  *Visibility
	Participant *Address
	Limit       int
	Offset      int
}
