package handlers

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wager-ledger/internal/auth"
	"wager-ledger/internal/blockchain"
	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"
	"wager-ledger/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, allowAirdrop bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.InitJWT("handler-test-secret")

	deriver, err := blockchain.NewDeriver(blockchain.DefaultProgramID)
	if err != nil {
		t.Fatalf("NewDeriver failed: %v", err)
	}
	store := repository.NewMemoryStore()
	logger := zap.NewNop()
	profiles := services.NewProfileService(store, deriver, logger)

	router := gin.New()
	RegisterRoutes(router, Set{
		Auth:    NewAuthHandler(profiles, logger),
		Bets:    NewBetHandler(services.NewBetService(store, deriver, logger), nil, logger),
		Profile: NewProfileHandler(profiles, logger),
		Friends: NewFriendHandler(services.NewFriendService(store, deriver, logger), logger),
		Wallet:  NewWalletHandler(services.NewWalletService(store, logger), allowAirdrop, logger),
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path string, wallet *models.Address, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if wallet != nil {
		token, err := auth.GenerateToken(*wallet)
		if err != nil {
			s.t.Fatalf("GenerateToken failed: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) expect(rec *httptest.ResponseRecorder, status int, out interface{}) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("status = %d, want %d: %s", rec.Code, status, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			s.t.Fatalf("decode response: %v", err)
		}
	}
}

// register creates a profile and funds the wallet.
func (s *testServer) register(b byte, name string, funds uint64) models.Address {
	s.t.Helper()
	var w models.Address
	for i := range w {
		w[i] = b
	}
	s.expect(s.do(http.MethodPost, "/api/profiles", &w, gin.H{"name": name}), http.StatusCreated, nil)
	s.expect(s.do(http.MethodPost, "/api/wallet/airdrop", &w, gin.H{"amount": funds}), http.StatusOK, nil)
	return w
}

func TestBetFlowOverHTTP(t *testing.T) {
	s := newTestServer(t, true)
	alice := s.register(1, "alice", 5000)
	bob := s.register(2, "bob", 5000)

	var bet models.Bet
	s.expect(s.do(http.MethodPost, "/api/bets", &alice, gin.H{
		"stake_amount": 1000,
		"description":  "derby ends in a draw",
		"referee_kind": models.RefereeHonorSystem,
		"category":     models.CategorySports,
		"odds_win":     3,
		"odds_lose":    1,
		"expires_at":   time.Now().Add(time.Hour).Unix(),
	}), http.StatusCreated, &bet)
	if bet.Status != models.BetStatusOpen || bet.StakeAmount != 1000 {
		t.Fatalf("unexpected bet: %+v", bet)
	}
	path := "/api/bets/" + bet.Address.String()

	var feed struct {
		Bets []models.Bet `json:"bets"`
	}
	s.expect(s.do(http.MethodGet, "/api/bets", nil, nil), http.StatusOK, &feed)
	if len(feed.Bets) != 1 || feed.Bets[0].Address != bet.Address {
		t.Fatalf("feed = %+v", feed.Bets)
	}

	var apiErr struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
		Name  string `json:"name"`
	}
	s.expect(s.do(http.MethodPost, path+"/accept", &alice, nil), http.StatusForbidden, &apiErr)
	if apiErr.Code != 6007 || apiErr.Name != "CannotAcceptOwnBet" {
		t.Errorf("error body = %+v", apiErr)
	}

	s.expect(s.do(http.MethodPost, path+"/accept", &bob, gin.H{"creator": alice}), http.StatusOK, &bet)
	if bet.Acceptor == nil || *bet.Acceptor != bob {
		t.Fatalf("acceptor not recorded: %+v", bet)
	}

	s.expect(s.do(http.MethodPost, path+"/resolve", &bob, gin.H{"winner_is_creator": false}), http.StatusForbidden, &apiErr)
	if apiErr.Code != 6003 {
		t.Errorf("expected Unauthorized, got %+v", apiErr)
	}

	var resolved struct {
		Bet        models.Bet           `json:"bet"`
		Settlement services.Settlement `json:"settlement"`
	}
	s.expect(s.do(http.MethodPost, path+"/resolve", &alice, gin.H{"winner_is_creator": true}), http.StatusOK, &resolved)
	if resolved.Settlement.Disbursed != 4000 || resolved.Bet.Status != models.BetStatusResolved {
		t.Errorf("resolve response = %+v", resolved)
	}

	var balance services.WalletBalance
	s.expect(s.do(http.MethodGet, "/api/wallet", &alice, nil), http.StatusOK, &balance)
	if balance.Lamports != 8000 {
		t.Errorf("alice lamports = %d, want 8000", balance.Lamports)
	}

	var profile models.Profile
	s.expect(s.do(http.MethodGet, "/api/profiles/"+alice.String(), nil, nil), http.StatusOK, &profile)
	if profile.WinsAsCreator != 1 || profile.CreatorProfit != 3000 {
		t.Errorf("profile = %+v", profile)
	}

	s.expect(s.do(http.MethodDelete, path, &bob, nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, path, nil, nil), http.StatusNotFound, nil)
}

func TestHTTPErrors(t *testing.T) {
	s := newTestServer(t, false)
	var w models.Address
	w[0] = 3

	s.expect(s.do(http.MethodGet, "/api/bets/not-base58!", nil, nil), http.StatusBadRequest, nil)
	s.expect(s.do(http.MethodPost, "/api/bets", nil, gin.H{}), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodPost, "/api/wallet/airdrop", &w, gin.H{"amount": 5}), http.StatusForbidden, nil)
	s.expect(s.do(http.MethodGet, "/api/me/profile", &w, nil), http.StatusNotFound, nil)

	s.expect(s.do(http.MethodPost, "/api/profiles", &w, gin.H{"name": "carol"}), http.StatusCreated, nil)
	s.expect(s.do(http.MethodPost, "/api/profiles", &w, gin.H{"name": "carol"}), http.StatusConflict, nil)

	var apiErr struct {
		Code int `json:"code"`
	}
	s.expect(s.do(http.MethodPost, "/api/bets", &w, gin.H{
		"stake_amount": 10,
		"odds_win":     0,
		"odds_lose":    1,
		"expires_at":   time.Now().Add(time.Hour).Unix(),
	}), http.StatusBadRequest, &apiErr)
	if apiErr.Code != 6001 {
		t.Errorf("code = %d, want 6001", apiErr.Code)
	}

	s.expect(s.do(http.MethodPost, "/api/bets", &w, gin.H{
		"stake_amount": 10,
		"odds_win":     1,
		"odds_lose":    1,
		"expires_at":   time.Now().Add(time.Hour).Unix(),
	}), http.StatusPaymentRequired, nil)
}

func TestWalletLoginOverHTTP(t *testing.T) {
	s := newTestServer(t, false)
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	sig := ed25519.Sign(priv, []byte(auth.LoginMessage))

	var login struct {
		Token string `json:"token"`
	}
	s.expect(s.do(http.MethodPost, "/auth/wallet", nil, gin.H{
		"wallet_address": base58.Encode(pub),
		"signature":      base58.Encode(sig),
	}), http.StatusOK, &login)

	claims, err := auth.ValidateToken(login.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.Subject != base58.Encode(pub) {
		t.Errorf("token wallet = %s", claims.Subject)
	}

	bad := ed25519.Sign(priv, []byte("other"))
	s.expect(s.do(http.MethodPost, "/auth/wallet", nil, gin.H{
		"wallet_address": base58.Encode(pub),
		"signature":      base58.Encode(bad),
	}), http.StatusUnauthorized, nil)
}
