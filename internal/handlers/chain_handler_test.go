package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"wager-ledger/internal/blockchain"
	"wager-ledger/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeChain struct {
	bets      map[models.Address]*models.Bet
	connected bool
}

func (f *fakeChain) GetBet(ctx context.Context, addr models.Address) (*models.Bet, error) {
	if b, ok := f.bets[addr]; ok {
		return b, nil
	}
	return nil, blockchain.ErrAccountNotFound
}

func (f *fakeChain) GetProfile(ctx context.Context, addr models.Address) (*models.Profile, error) {
	return nil, blockchain.ErrForeignAccount
}

func (f *fakeChain) GetProfileByOwner(ctx context.Context, owner models.Address) (*models.Profile, error) {
	return &models.Profile{Owner: owner}, nil
}

func (f *fakeChain) RunDiagnostics(ctx context.Context) *blockchain.DiagnosticResult {
	return &blockchain.DiagnosticResult{RPCConnected: f.connected}
}

func TestChainHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var known models.Address
	known[0] = 1
	chain := &fakeChain{bets: map[models.Address]*models.Bet{known: {Address: known, StakeAmount: 5}}}

	h := NewChainHandler(chain, zap.NewNop())
	r := gin.New()
	r.GET("/chain/bets/:address", h.GetBet)
	r.GET("/chain/profiles/:address", h.GetProfile)
	r.GET("/chain/owners/:owner/profile", h.GetOwnerProfile)
	r.GET("/chain/diagnostics", h.Diagnostics)

	var missing models.Address
	missing[0] = 2
	tests := []struct {
		path string
		want int
	}{
		{"/chain/bets/" + known.String(), http.StatusOK},
		{"/chain/bets/" + missing.String(), http.StatusNotFound},
		{"/chain/bets/xyz0", http.StatusBadRequest},
		{"/chain/profiles/" + known.String(), http.StatusUnprocessableEntity},
		{"/chain/owners/" + known.String() + "/profile", http.StatusOK},
		{"/chain/diagnostics", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}

	chain.connected = true
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chain/diagnostics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("diagnostics = %d, want 200", rec.Code)
	}
}
