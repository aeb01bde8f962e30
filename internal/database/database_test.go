package database

import (
	"testing"

	"wager-ledger/internal/models"

	"go.uber.org/zap"
)

func TestConnectAndMigrateSQLite(t *testing.T) {
	db, err := Connect("sqlite", "file::memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := AutoMigrate(db, zap.NewNop()); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	for _, table := range []string{"bets", "bet_treasuries", "profiles", "friends", "wallets", "bet_transfers"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s missing after migration", table)
		}
	}
	if !db.Migrator().HasColumn(&models.Profile{}, "creator_volume") {
		t.Error("profiles.creator_volume missing")
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect("mysql", "", zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
