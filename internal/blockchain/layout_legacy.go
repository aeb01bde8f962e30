package blockchain

import (
	"fmt"

	"wager-ledger/internal/models"

	bin "github.com/gagliardetto/binary"
)

const (
	legacyDescriptionSize = 128

	LegacyBetAccountSize = discriminatorSize + 32 + optionAddressSize + 8 + legacyDescriptionSize +
		1 + 1 + 8 + 8 + 8 + 1 + optionAddressSize + 8 + optionInt64Size + optionInt64Size + 1 + 1 + 6

	// ProgramBetAccountSize is the bet layout deployed by the wager program:
	// a full description but no category, referee address or visibility.
	ProgramBetAccountSize = discriminatorSize + 32 + optionAddressSize + 8 + models.DescriptionSize +
		1 + 8 + 8 + 8 + 1 + optionAddressSize + 8 + optionInt64Size + optionInt64Size + 1 + 1 + 6

	LegacyProfileAccountSize = discriminatorSize + 32 + models.NameSize + 6*4 + 2*8 + 8 + 1 + 1 + 7
)

// legacyBet is the first bet layout: no referee address, no visibility and a
// 128 byte description.
type legacyBet struct {
	Creator     models.Address
	Acceptor    *models.Address
	StakeAmount uint64
	Description [legacyDescriptionSize]byte
	RefereeKind uint8
	Category    uint8
	OddsWin     uint64
	OddsLose    uint64
	ExpiresAt   int64
	Status      uint8
	Winner      *models.Address
	CreatedAt   int64
	AcceptedAt  *int64
	ResolvedAt  *int64
	Version     uint8
	Bump        uint8
}

func (b *legacyBet) MarshalWithEncoder(enc *bin.Encoder) error {
	w := writer{enc: enc}
	w.address(b.Creator)
	w.optionAddress(b.Acceptor)
	w.u64(b.StakeAmount)
	w.bytes(b.Description[:])
	w.u8(b.RefereeKind)
	w.u8(b.Category)
	w.u64(b.OddsWin)
	w.u64(b.OddsLose)
	w.i64(b.ExpiresAt)
	w.u8(b.Status)
	w.optionAddress(b.Winner)
	w.i64(b.CreatedAt)
	w.optionInt64(b.AcceptedAt)
	w.optionInt64(b.ResolvedAt)
	w.u8(b.Version)
	w.u8(b.Bump)
	w.bytes(make([]byte, 6))
	return w.err
}

func (b *legacyBet) UnmarshalWithDecoder(dec *bin.Decoder) error {
	r := reader{dec: dec}
	b.Creator = r.address()
	b.Acceptor = r.optionAddress()
	b.StakeAmount = r.u64()
	r.fill(b.Description[:])
	b.RefereeKind = r.u8()
	b.Category = r.u8()
	b.OddsWin = r.u64()
	b.OddsLose = r.u64()
	b.ExpiresAt = r.i64()
	b.Status = r.u8()
	b.Winner = r.optionAddress()
	b.CreatedAt = r.i64()
	b.AcceptedAt = r.optionInt64()
	b.ResolvedAt = r.optionInt64()
	b.Version = r.u8()
	b.Bump = r.u8()
	return r.err
}

// migrate lifts a legacy bet to the current layout. Only honor system bets
// can be migrated: their referee is the creator.
func (b *legacyBet) migrate() (*models.Bet, error) {
	kind := models.RefereeKind(b.RefereeKind)
	if kind != models.RefereeHonorSystem {
		return nil, fmt.Errorf("%w: referee kind %s", ErrLegacyReferee, kind)
	}
	bet := &models.Bet{
		Creator:     b.Creator,
		Acceptor:    b.Acceptor,
		Referee:     b.Creator,
		RefereeKind: kind,
		StakeAmount: b.StakeAmount,
		OddsWin:     b.OddsWin,
		OddsLose:    b.OddsLose,
		Category:    models.Category(b.Category),
		Visibility:  models.VisibilityPublic,
		Status:      models.BetStatus(b.Status),
		Winner:      b.Winner,
		CreatedAt:   b.CreatedAt,
		AcceptedAt:  b.AcceptedAt,
		ResolvedAt:  b.ResolvedAt,
		ExpiresAt:   b.ExpiresAt,
		Version:     models.BetVersion,
		Bump:        b.Bump,
	}
	copy(bet.Description[:], b.Description[:])
	return bet, nil
}

type programBet struct {
	Creator     models.Address
	Acceptor    *models.Address
	StakeAmount uint64
	Description models.Description
	RefereeKind uint8
	OddsWin     uint64
	OddsLose    uint64
	ExpiresAt   int64
	Status      uint8
	Winner      *models.Address
	CreatedAt   int64
	AcceptedAt  *int64
	ResolvedAt  *int64
	Version     uint8
	Bump        uint8
}

func (b *programBet) MarshalWithEncoder(enc *bin.Encoder) error {
	w := writer{enc: enc}
	w.address(b.Creator)
	w.optionAddress(b.Acceptor)
	w.u64(b.StakeAmount)
	w.bytes(b.Description[:])
	w.u8(b.RefereeKind)
	w.u64(b.OddsWin)
	w.u64(b.OddsLose)
	w.i64(b.ExpiresAt)
	w.u8(b.Status)
	w.optionAddress(b.Winner)
	w.i64(b.CreatedAt)
	w.optionInt64(b.AcceptedAt)
	w.optionInt64(b.ResolvedAt)
	w.u8(b.Version)
	w.u8(b.Bump)
	w.bytes(make([]byte, 6))
	return w.err
}

func (b *programBet) UnmarshalWithDecoder(dec *bin.Decoder) error {
	r := reader{dec: dec}
	b.Creator = r.address()
	b.Acceptor = r.optionAddress()
	b.StakeAmount = r.u64()
	r.fill(b.Description[:])
	b.RefereeKind = r.u8()
	b.OddsWin = r.u64()
	b.OddsLose = r.u64()
	b.ExpiresAt = r.i64()
	b.Status = r.u8()
	b.Winner = r.optionAddress()
	b.CreatedAt = r.i64()
	b.AcceptedAt = r.optionInt64()
	b.ResolvedAt = r.optionInt64()
	b.Version = r.u8()
	b.Bump = r.u8()
	return r.err
}

// migrate files program bets under CategoryOther, the same honor system rule
// as legacyBet applies.
func (b *programBet) migrate() (*models.Bet, error) {
	legacy := legacyBet{
		Creator:     b.Creator,
		Acceptor:    b.Acceptor,
		StakeAmount: b.StakeAmount,
		RefereeKind: b.RefereeKind,
		Category:    uint8(models.CategoryOther),
		OddsWin:     b.OddsWin,
		OddsLose:    b.OddsLose,
		ExpiresAt:   b.ExpiresAt,
		Status:      b.Status,
		Winner:      b.Winner,
		CreatedAt:   b.CreatedAt,
		AcceptedAt:  b.AcceptedAt,
		ResolvedAt:  b.ResolvedAt,
		Version:     b.Version,
		Bump:        b.Bump,
	}
	bet, err := legacy.migrate()
	if err != nil {
		return nil, err
	}
	bet.Description = b.Description
	return bet, nil
}

// legacyProfile predates the cancelled counter and the volume totals.
type legacyProfile struct {
	Owner            models.Address
	Name             models.Name
	BetsCreated      uint32
	BetsAccepted     uint32
	WinsAsCreator    uint32
	LossesAsCreator  uint32
	WinsAsAcceptor   uint32
	LossesAsAcceptor uint32
	CreatorProfit    int64
	AcceptorProfit   int64
	CreatedAt        int64
	Version          uint8
	Bump             uint8
}

func (p *legacyProfile) MarshalWithEncoder(enc *bin.Encoder) error {
	w := writer{enc: enc}
	w.address(p.Owner)
	w.bytes(p.Name[:])
	w.u32(p.BetsCreated)
	w.u32(p.BetsAccepted)
	w.u32(p.WinsAsCreator)
	w.u32(p.LossesAsCreator)
	w.u32(p.WinsAsAcceptor)
	w.u32(p.LossesAsAcceptor)
	w.i64(p.CreatorProfit)
	w.i64(p.AcceptorProfit)
	w.i64(p.CreatedAt)
	w.u8(p.Version)
	w.u8(p.Bump)
	w.bytes(make([]byte, 7))
	return w.err
}

func (p *legacyProfile) UnmarshalWithDecoder(dec *bin.Decoder) error {
	r := reader{dec: dec}
	p.Owner = r.address()
	r.fill(p.Name[:])
	p.BetsCreated = r.u32()
	p.BetsAccepted = r.u32()
	p.WinsAsCreator = r.u32()
	p.LossesAsCreator = r.u32()
	p.WinsAsAcceptor = r.u32()
	p.LossesAsAcceptor = r.u32()
	p.CreatorProfit = r.i64()
	p.AcceptorProfit = r.i64()
	p.CreatedAt = r.i64()
	p.Version = r.u8()
	p.Bump = r.u8()
	return r.err
}

func (p *legacyProfile) migrate() *models.Profile {
	return &models.Profile{
		Owner:            p.Owner,
		Name:             p.Name,
		BetsCreated:      p.BetsCreated,
		BetsAccepted:     p.BetsAccepted,
		WinsAsCreator:    p.WinsAsCreator,
		LossesAsCreator:  p.LossesAsCreator,
		WinsAsAcceptor:   p.WinsAsAcceptor,
		LossesAsAcceptor: p.LossesAsAcceptor,
		CreatorProfit:    p.CreatorProfit,
		AcceptorProfit:   p.AcceptorProfit,
		CreatedAt:        p.CreatedAt,
		Version:          models.ProfileVersion,
		Bump:             p.Bump,
	}
}
