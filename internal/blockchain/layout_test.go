package blockchain

import (
	"errors"
	"testing"

	"wager-ledger/internal/models"
)

func encodeLegacyBet(t *testing.T, b *legacyBet) []byte {
	t.Helper()
	data, err := encodeAccount(betDiscriminator, LegacyBetAccountSize, b.MarshalWithEncoder)
	if err != nil {
		t.Fatalf("encode legacy bet: %v", err)
	}
	return data
}

func sampleBet() *models.Bet {
	desc, _ := models.NewDescription("Lakers win the finals")
	creatorName, _ := models.NewName("alice")
	acceptorName, _ := models.NewName("bob")
	accepted := int64(1_700_000_100)
	return &models.Bet{
		Index:            4,
		Creator:          addr(1),
		CreatorName:      creatorName,
		Acceptor:         addr(2).Ptr(),
		AcceptorName:     acceptorName,
		Referee:          addr(3),
		RefereeKind:      models.RefereeThirdParty,
		StakeAmount:      1000,
		OddsWin:          3,
		OddsLose:         1,
		Description:      desc,
		Category:         models.CategorySports,
		Visibility:       models.VisibilityPrivate,
		PrivateRecipient: addr(2).Ptr(),
		Status:           models.BetStatusAccepted,
		CreatedAt:        1_700_000_000,
		AcceptedAt:       &accepted,
		ExpiresAt:        1_700_086_400,
		RecordDeposit:    2_039_280,
		Version:          models.BetVersion,
		Bump:             254,
	}
}

func TestBetRoundTrip(t *testing.T) {
	bet := sampleBet()
	data, err := EncodeBet(bet)
	if err != nil {
		t.Fatalf("EncodeBet failed: %v", err)
	}
	if len(data) != BetAccountSize {
		t.Fatalf("encoded size = %d, want %d", len(data), BetAccountSize)
	}

	got, err := DecodeBet(data)
	if err != nil {
		t.Fatalf("DecodeBet failed: %v", err)
	}
	if got.Creator != bet.Creator || got.Referee != bet.Referee || !models.AddressEqual(got.Acceptor, bet.Acceptor) {
		t.Errorf("addresses differ: %+v", got)
	}
	if got.Winner != nil || got.ResolvedAt != nil {
		t.Errorf("absent options decoded as present")
	}
	if got.AcceptedAt == nil || *got.AcceptedAt != *bet.AcceptedAt {
		t.Errorf("accepted_at = %v", got.AcceptedAt)
	}
	if got.Description != bet.Description || got.Index != 4 || got.RecordDeposit != bet.RecordDeposit {
		t.Errorf("scalar fields differ: %+v", got)
	}
	if got.CreatorName.String() != "alice" || got.AcceptorName.String() != "bob" {
		t.Errorf("names = %q/%q", got.CreatorName.String(), got.AcceptorName.String())
	}
	if got.Visibility != models.VisibilityPrivate || !models.AddressEqual(got.PrivateRecipient, bet.PrivateRecipient) {
		t.Errorf("visibility not preserved")
	}
}

func TestDecodeBetRejectsOtherAccounts(t *testing.T) {
	profile, err := EncodeProfile(&models.Profile{Owner: addr(1), Version: models.ProfileVersion})
	if err != nil {
		t.Fatalf("EncodeProfile failed: %v", err)
	}
	if _, err := DecodeBet(profile); !errors.Is(err, ErrDiscriminator) {
		t.Errorf("expected ErrDiscriminator, got %v", err)
	}

	data, _ := EncodeBet(sampleBet())
	if _, err := DecodeBet(data[:100]); !errors.Is(err, ErrUnknownLayout) {
		t.Errorf("expected ErrUnknownLayout for truncated account, got %v", err)
	}
}

func TestLegacyBetMigration(t *testing.T) {
	legacy := &legacyBet{
		Creator:     addr(1),
		StakeAmount: 500,
		RefereeKind: uint8(models.RefereeHonorSystem),
		Category:    uint8(models.CategoryCrypto),
		OddsWin:     1,
		OddsLose:    2,
		ExpiresAt:   1_700_000_500,
		Status:      uint8(models.BetStatusOpen),
		CreatedAt:   1_700_000_000,
		Version:     1,
		Bump:        250,
	}
	copy(legacy.Description[:], "BTC above 100k")

	bet, err := DecodeBet(encodeLegacyBet(t, legacy))
	if err != nil {
		t.Fatalf("DecodeBet(legacy) failed: %v", err)
	}
	if bet.Version != models.BetVersion {
		t.Errorf("version = %d, want %d", bet.Version, models.BetVersion)
	}
	if bet.Referee != legacy.Creator {
		t.Errorf("honor system referee should be the creator")
	}
	if bet.Description.String() != "BTC above 100k" {
		t.Errorf("description = %q", bet.Description.String())
	}
	if bet.Visibility != models.VisibilityPublic || bet.Category != models.CategoryCrypto {
		t.Errorf("unexpected visibility/category: %d/%d", bet.Visibility, bet.Category)
	}
	if bet.Acceptor != nil || bet.Winner != nil {
		t.Errorf("absent options decoded as present")
	}
}

func TestLegacyThirdPartyBetFailsMigration(t *testing.T) {
	legacy := &legacyBet{
		Creator:     addr(1),
		StakeAmount: 500,
		RefereeKind: uint8(models.RefereeThirdParty),
		OddsWin:     1,
		OddsLose:    1,
		Version:     1,
	}
	if _, err := DecodeBet(encodeLegacyBet(t, legacy)); !errors.Is(err, ErrLegacyReferee) {
		t.Errorf("expected ErrLegacyReferee, got %v", err)
	}
}

func TestProgramBetMigration(t *testing.T) {
	if ProgramBetAccountSize != 430 {
		t.Fatalf("ProgramBetAccountSize = %d, want 430", ProgramBetAccountSize)
	}
	desc, _ := models.NewDescription("Rain in Lisbon on Friday")
	accepted := int64(1_700_000_200)
	deployed := &programBet{
		Creator:     addr(1),
		Acceptor:    addr(2).Ptr(),
		StakeAmount: 750,
		Description: desc,
		RefereeKind: uint8(models.RefereeHonorSystem),
		OddsWin:     2,
		OddsLose:    1,
		ExpiresAt:   1_700_086_400,
		Status:      uint8(models.BetStatusAccepted),
		CreatedAt:   1_700_000_000,
		AcceptedAt:  &accepted,
		Version:     1,
		Bump:        251,
	}
	data, err := encodeAccount(betDiscriminator, ProgramBetAccountSize, deployed.MarshalWithEncoder)
	if err != nil {
		t.Fatalf("encode program bet: %v", err)
	}

	bet, err := DecodeBet(data)
	if err != nil {
		t.Fatalf("DecodeBet(program) failed: %v", err)
	}
	if bet.Description != desc || bet.StakeAmount != 750 || bet.Bump != 251 {
		t.Errorf("fields lost: %+v", bet)
	}
	if bet.Referee != deployed.Creator || !models.AddressEqual(bet.Acceptor, deployed.Acceptor) {
		t.Errorf("unexpected parties: %+v", bet)
	}
	if bet.Category != models.CategoryOther || bet.Visibility != models.VisibilityPublic {
		t.Errorf("unexpected category/visibility: %d/%d", bet.Category, bet.Visibility)
	}
	if bet.AcceptedAt == nil || *bet.AcceptedAt != accepted || bet.Version != models.BetVersion {
		t.Errorf("accepted_at/version not migrated: %+v", bet)
	}

	deployed.RefereeKind = uint8(models.RefereeThirdParty)
	data, _ = encodeAccount(betDiscriminator, ProgramBetAccountSize, deployed.MarshalWithEncoder)
	if _, err := DecodeBet(data); !errors.Is(err, ErrLegacyReferee) {
		t.Errorf("expected ErrLegacyReferee, got %v", err)
	}
}

func TestProfileRoundTripAndMigration(t *testing.T) {
	name, _ := models.NewName("alice")
	profile := &models.Profile{
		Owner:          addr(1),
		Name:           name,
		BetsCreated:    3,
		BetsCancelled:  1,
		CreatorProfit:  -1000,
		AcceptorProfit: 3000,
		CreatorVolume:  1500,
		CreatedAt:      1_700_000_000,
		Version:        models.ProfileVersion,
	}
	data, err := EncodeProfile(profile)
	if err != nil {
		t.Fatalf("EncodeProfile failed: %v", err)
	}
	got, err := DecodeProfile(data)
	if err != nil {
		t.Fatalf("DecodeProfile failed: %v", err)
	}
	if *got != *profile {
		t.Errorf("profile round trip mismatch:\n got %+v\nwant %+v", got, profile)
	}

	legacy := &legacyProfile{
		Owner:          addr(2),
		Name:           name,
		BetsCreated:    5,
		BetsAccepted:   2,
		CreatorProfit:  42,
		AcceptorProfit: -7,
		Version:        1,
	}
	legacyData, err := encodeAccount(profileDiscriminator, LegacyProfileAccountSize, legacy.MarshalWithEncoder)
	if err != nil {
		t.Fatalf("encode legacy profile: %v", err)
	}
	migrated, err := DecodeProfile(legacyData)
	if err != nil {
		t.Fatalf("DecodeProfile(legacy) failed: %v", err)
	}
	if migrated.BetsCreated != 5 || migrated.BetsAccepted != 2 || migrated.CreatorProfit != 42 || migrated.AcceptorProfit != -7 {
		t.Errorf("legacy counters lost: %+v", migrated)
	}
	if migrated.BetsCancelled != 0 || migrated.CreatorVolume != 0 || migrated.Version != models.ProfileVersion {
		t.Errorf("new fields should start at zero: %+v", migrated)
	}
}

func TestFriendRoundTrip(t *testing.T) {
	friend := &models.Friend{
		UserA:       addr(1),
		UserAStatus: models.FriendStatusRequested,
		UserB:       addr(2),
		UserBStatus: models.FriendStatusNone,
		CreatedAt:   99,
		Bump:        200,
	}
	data, err := EncodeFriend(friend)
	if err != nil {
		t.Fatalf("EncodeFriend failed: %v", err)
	}
	if len(data) != FriendAccountSize {
		t.Errorf("encoded size = %d, want %d", len(data), FriendAccountSize)
	}
	got, err := DecodeFriend(data)
	if err != nil {
		t.Fatalf("DecodeFriend failed: %v", err)
	}
	if *got != *friend {
		t.Errorf("friend round trip mismatch: %+v", got)
	}
}
