package blockchain

import (
	"testing"

	"wager-ledger/internal/models"
)

func newTestDeriver(t *testing.T) *Deriver {
	d, err := NewDeriver(DefaultProgramID)
	if err != nil {
		t.Fatalf("NewDeriver failed: %v", err)
	}
	return d
}

func addr(b byte) models.Address {
	var a models.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestBetAddressDeterministic(t *testing.T) {
	d := newTestDeriver(t)
	creator := addr(7)

	first, bump1, err := d.BetAddress(creator, 0)
	if err != nil {
		t.Fatalf("BetAddress failed: %v", err)
	}
	again, bump2, _ := d.BetAddress(creator, 0)
	if first != again || bump1 != bump2 {
		t.Errorf("derivation not deterministic: %s/%d vs %s/%d", first, bump1, again, bump2)
	}

	next, _, _ := d.BetAddress(creator, 1)
	if next == first {
		t.Errorf("different indices derived the same address")
	}
	other, _, _ := d.BetAddress(addr(8), 0)
	if other == first {
		t.Errorf("different creators derived the same address")
	}
}

func TestRecordKindsDoNotCollide(t *testing.T) {
	d := newTestDeriver(t)
	owner := addr(3)

	profile, _, _ := d.ProfileAddress(owner)
	treasury, _, _ := d.TreasuryAddress(owner)
	bet, _, _ := d.BetAddress(owner, 0)
	if profile == treasury || profile == bet || treasury == bet {
		t.Errorf("seed prefixes collided: profile=%s treasury=%s bet=%s", profile, treasury, bet)
	}
}

func TestFriendAddressSymmetric(t *testing.T) {
	d := newTestDeriver(t)
	a, b := addr(1), addr(2)

	ab, _, err := d.FriendAddress(a, b)
	if err != nil {
		t.Fatalf("FriendAddress failed: %v", err)
	}
	ba, _, _ := d.FriendAddress(b, a)
	if ab != ba {
		t.Errorf("friend address depends on argument order")
	}

	lo, hi := SortPair(b, a)
	if lo != a || hi != b {
		t.Errorf("SortPair = (%s, %s)", lo, hi)
	}
}

func TestNewDeriverRejectsGarbage(t *testing.T) {
	if _, err := NewDeriver("not-a-key"); err == nil {
		t.Errorf("expected error for invalid program id")
	}
}
