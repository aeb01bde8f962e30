package blockchain

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"wager-ledger/internal/models"

	bin "github.com/gagliardetto/binary"
)

const (
	discriminatorSize = 8
	optionAddressSize = 1 + 32
	optionInt64Size   = 1 + 8

	// BetAccountSize is the allocated size of a current bet account.
	BetAccountSize = discriminatorSize + 32 + optionAddressSize + 32 + 1 + 8 +
		models.DescriptionSize + 1 + 1 + optionAddressSize + 8 + 8 + 8 + 1 +
		optionAddressSize + 8 + optionInt64Size + optionInt64Size + 4 + 8 + 2*models.NameSize + 1 + 1

	ProfileAccountSize = discriminatorSize + 32 + models.NameSize + 7*4 + 2*8 + 2*8 + 8 + 1 + 1 + 7

	FriendAccountSize = discriminatorSize + 2*(32+models.NameSize+1) + 8 + 1 + 1 + 5
)

var (
	ErrDiscriminator = errors.New("account discriminator mismatch")
	ErrUnknownLayout = errors.New("unknown account layout")
	// ErrLegacyReferee is returned for legacy third-party bets, whose referee
	// address was never stored.
	ErrLegacyReferee = errors.New("legacy bet has no recorded referee")
)

var (
	betDiscriminator     = accountDiscriminator("Bet")
	profileDiscriminator = accountDiscriminator("Profile")
	friendDiscriminator  = accountDiscriminator("Friend")
)

func accountDiscriminator(name string) [discriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [discriminatorSize]byte
	copy(d[:], sum[:discriminatorSize])
	return d
}

// EncodeBet serializes a bet into a zero padded account of BetAccountSize.
func EncodeBet(bet *models.Bet) ([]byte, error) {
	return encodeAccount(betDiscriminator, BetAccountSize, func(enc *bin.Encoder) error {
		return (*betAccount)(bet).MarshalWithEncoder(enc)
	})
}

// DecodeBet reads a bet account of either layout; legacy accounts are
// migrated to the current version.
func DecodeBet(data []byte) (*models.Bet, error) {
	dec, err := accountDecoder(data, betDiscriminator)
	if err != nil {
		return nil, err
	}
	switch len(data) {
	case BetAccountSize:
		var bet models.Bet
		if err := (*betAccount)(&bet).UnmarshalWithDecoder(dec); err != nil {
			return nil, fmt.Errorf("failed to decode bet: %w", err)
		}
		if bet.Version != models.BetVersion {
			return nil, fmt.Errorf("%w: bet version %d", ErrUnknownLayout, bet.Version)
		}
		return &bet, nil
	case LegacyBetAccountSize:
		var legacy legacyBet
		if err := legacy.UnmarshalWithDecoder(dec); err != nil {
			return nil, fmt.Errorf("failed to decode legacy bet: %w", err)
		}
		return legacy.migrate()
	case ProgramBetAccountSize:
		var deployed programBet
		if err := deployed.UnmarshalWithDecoder(dec); err != nil {
			return nil, fmt.Errorf("failed to decode program bet: %w", err)
		}
		return deployed.migrate()
	default:
		return nil, fmt.Errorf("%w: bet account of %d bytes", ErrUnknownLayout, len(data))
	}
}

func EncodeProfile(profile *models.Profile) ([]byte, error) {
	return encodeAccount(profileDiscriminator, ProfileAccountSize, func(enc *bin.Encoder) error {
		return (*profileAccount)(profile).MarshalWithEncoder(enc)
	})
}

func DecodeProfile(data []byte) (*models.Profile, error) {
	dec, err := accountDecoder(data, profileDiscriminator)
	if err != nil {
		return nil, err
	}
	switch len(data) {
	case ProfileAccountSize:
		var profile models.Profile
		if err := (*profileAccount)(&profile).UnmarshalWithDecoder(dec); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		return &profile, nil
	case LegacyProfileAccountSize:
		var legacy legacyProfile
		if err := legacy.UnmarshalWithDecoder(dec); err != nil {
			return nil, fmt.Errorf("failed to decode legacy profile: %w", err)
		}
		return legacy.migrate(), nil
	default:
		return nil, fmt.Errorf("%w: profile account of %d bytes", ErrUnknownLayout, len(data))
	}
}

func EncodeFriend(friend *models.Friend) ([]byte, error) {
	return encodeAccount(friendDiscriminator, FriendAccountSize, func(enc *bin.Encoder) error {
		return (*friendAccount)(friend).MarshalWithEncoder(enc)
	})
}

func DecodeFriend(data []byte) (*models.Friend, error) {
	dec, err := accountDecoder(data, friendDiscriminator)
	if err != nil {
		return nil, err
	}
	var friend models.Friend
	if err := (*friendAccount)(&friend).UnmarshalWithDecoder(dec); err != nil {
		return nil, fmt.Errorf("failed to decode friend: %w", err)
	}
	return &friend, nil
}

func encodeAccount(disc [discriminatorSize]byte, size int, write func(enc *bin.Encoder) error) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	if err := write(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	if buf.Len() > size {
		return nil, fmt.Errorf("encoded account is %d bytes, max %d", buf.Len(), size)
	}
	out := make([]byte, size)
	copy(out, buf.Bytes())
	return out, nil
}

func accountDecoder(data []byte, disc [discriminatorSize]byte) (*bin.Decoder, error) {
	if len(data) < discriminatorSize {
		return nil, fmt.Errorf("invalid account data length %d", len(data))
	}
	if !bytes.Equal(data[:discriminatorSize], disc[:]) {
		return nil, ErrDiscriminator
	}
	return bin.NewBorshDecoder(data[discriminatorSize:]), nil
}

// betAccount is the current on-chain bet layout.
type betAccount models.Bet

func (b *betAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	w := writer{enc: enc}
	w.address(b.Creator)
	w.optionAddress(b.Acceptor)
	w.address(b.Referee)
	w.u8(uint8(b.RefereeKind))
	w.u64(b.StakeAmount)
	w.bytes(b.Description[:])
	w.u8(uint8(b.Category))
	w.u8(uint8(b.Visibility))
	w.optionAddress(b.PrivateRecipient)
	w.u64(b.OddsWin)
	w.u64(b.OddsLose)
	w.i64(b.ExpiresAt)
	w.u8(uint8(b.Status))
	w.optionAddress(b.Winner)
	w.i64(b.CreatedAt)
	w.optionInt64(b.AcceptedAt)
	w.optionInt64(b.ResolvedAt)
	w.u32(b.Index)
	w.u64(b.RecordDeposit)
	w.bytes(b.CreatorName[:])
	w.bytes(b.AcceptorName[:])
	w.u8(b.Version)
	w.u8(b.Bump)
	return w.err
}

func (b *betAccount) UnmarshalWithDecoder(dec *bin.Decoder) error {
	r := reader{dec: dec}
	b.Creator = r.address()
	b.Acceptor = r.optionAddress()
	b.Referee = r.address()
	b.RefereeKind = models.RefereeKind(r.u8())
	b.StakeAmount = r.u64()
	r.fill(b.Description[:])
	b.Category = models.Category(r.u8())
	b.Visibility = models.Visibility(r.u8())
	b.PrivateRecipient = r.optionAddress()
	b.OddsWin = r.u64()
	b.OddsLose = r.u64()
	b.ExpiresAt = r.i64()
	b.Status = models.BetStatus(r.u8())
	b.Winner = r.optionAddress()
	b.CreatedAt = r.i64()
	b.AcceptedAt = r.optionInt64()
	b.ResolvedAt = r.optionInt64()
	b.Index = r.u32()
	b.RecordDeposit = r.u64()
	r.fill(b.CreatorName[:])
	r.fill(b.AcceptorName[:])
	b.Version = r.u8()
	b.Bump = r.u8()
	return r.err
}

type profileAccount models.Profile

func (p *profileAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	w := writer{enc: enc}
	w.address(p.Owner)
	w.bytes(p.Name[:])
	w.u32(p.BetsCreated)
	w.u32(p.BetsCancelled)
	w.u32(p.BetsAccepted)
	w.u32(p.WinsAsCreator)
	w.u32(p.LossesAsCreator)
	w.u32(p.WinsAsAcceptor)
	w.u32(p.LossesAsAcceptor)
	w.i64(p.CreatorProfit)
	w.i64(p.AcceptorProfit)
	w.u64(p.CreatorVolume)
	w.u64(p.AcceptorVolume)
	w.i64(p.CreatedAt)
	w.u8(p.Version)
	w.u8(p.Bump)
	w.bytes(make([]byte, 7))
	return w.err
}

func (p *profileAccount) UnmarshalWithDecoder(dec *bin.Decoder) error {
	r := reader{dec: dec}
	p.Owner = r.address()
	r.fill(p.Name[:])
	p.BetsCreated = r.u32()
	p.BetsCancelled = r.u32()
	p.BetsAccepted = r.u32()
	p.WinsAsCreator = r.u32()
	p.LossesAsCreator = r.u32()
	p.WinsAsAcceptor = r.u32()
	p.LossesAsAcceptor = r.u32()
	p.CreatorProfit = r.i64()
	p.AcceptorProfit = r.i64()
	p.CreatorVolume = r.u64()
	p.AcceptorVolume = r.u64()
	p.CreatedAt = r.i64()
	p.Version = r.u8()
	p.Bump = r.u8()
	return r.err
}

type friendAccount models.Friend

func (f *friendAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	w := writer{enc: enc}
	w.address(f.UserA)
	w.bytes(f.UserAName[:])
	w.u8(uint8(f.UserAStatus))
	w.address(f.UserB)
	w.bytes(f.UserBName[:])
	w.u8(uint8(f.UserBStatus))
	w.i64(f.CreatedAt)
	w.u8(1)
	w.u8(f.Bump)
	w.bytes(make([]byte, 5))
	return w.err
}

func (f *friendAccount) UnmarshalWithDecoder(dec *bin.Decoder) error {
	r := reader{dec: dec}
	f.UserA = r.address()
	r.fill(f.UserAName[:])
	f.UserAStatus = models.FriendStatus(r.u8())
	f.UserB = r.address()
	r.fill(f.UserBName[:])
	f.UserBStatus = models.FriendStatus(r.u8())
	f.CreatedAt = r.i64()
	r.u8() // version
	f.Bump = r.u8()
	return r.err
}

// writer and reader keep the first error so field lists read top to bottom.
type writer struct {
	enc *bin.Encoder
	err error
}

func (w *writer) do(fn func() error) {
	if w.err == nil {
		w.err = fn()
	}
}

func (w *writer) u8(v uint8) {
	w.do(func() error { return w.enc.WriteUint8(v) })
}

func (w *writer) u32(v uint32) {
	w.do(func() error { return w.enc.WriteUint32(v, binary.LittleEndian) })
}

func (w *writer) u64(v uint64) {
	w.do(func() error { return w.enc.WriteUint64(v, binary.LittleEndian) })
}

func (w *writer) i64(v int64) {
	w.do(func() error { return w.enc.WriteInt64(v, binary.LittleEndian) })
}

func (w *writer) bytes(b []byte) {
	w.do(func() error { return w.enc.WriteBytes(b, false) })
}

func (w *writer) address(a models.Address) {
	w.bytes(a[:])
}

func (w *writer) optionAddress(a *models.Address) {
	if a == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.address(*a)
}

func (w *writer) optionInt64(v *int64) {
	if v == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.i64(*v)
}

type reader struct {
	dec *bin.Decoder
	err error
}

func (r *reader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint8()
	r.err = err
	return v
}

func (r *reader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint32(binary.LittleEndian)
	r.err = err
	return v
}

func (r *reader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint64(binary.LittleEndian)
	r.err = err
	return v
}

func (r *reader) i64() int64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadInt64(binary.LittleEndian)
	r.err = err
	return v
}

func (r *reader) fill(dst []byte) {
	if r.err != nil {
		return
	}
	b, err := r.dec.ReadNBytes(len(dst))
	if err != nil {
		r.err = err
		return
	}
	copy(dst, b)
}

func (r *reader) address() models.Address {
	var a models.Address
	r.fill(a[:])
	return a
}

func (r *reader) optionAddress() *models.Address {
	switch r.u8() {
	case 0:
		return nil
	case 1:
		a := r.address()
		return &a
	default:
		if r.err == nil {
			r.err = errors.New("invalid option tag")
		}
		return nil
	}
}

func (r *reader) optionInt64() *int64 {
	switch r.u8() {
	case 0:
		return nil
	case 1:
		v := r.i64()
		return &v
	default:
		if r.err == nil {
			r.err = errors.New("invalid option tag")
		}
		return nil
	}
}
