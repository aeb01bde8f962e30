package logger

import "testing"

func TestNew(t *testing.T) {
	for _, env := range []string{"local", "development", "production"} {
		l, err := New("wager-ledger", env)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", env, err)
		}
		if l == nil {
			t.Fatalf("New(%q) returned nil logger", env)
		}
		_ = l.Sync()
	}
}
