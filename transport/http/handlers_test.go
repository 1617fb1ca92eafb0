package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blockboard/povauth/adapters/issuer"
	"github.com/blockboard/povauth/adapters/oracle"
	"github.com/blockboard/povauth/adapters/store"
	"github.com/blockboard/povauth/core"
	"github.com/blockboard/povauth/ports"
	"github.com/blockboard/povauth/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	legacyAddr = "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"

	segwitAddr = "bc1qs39xhnvs4fapud7hteh6anyr8dl09e5e8km875"
	segwitText = "Prove you own Bitcoin address bc1qs39xhnvs4fapud7hteh6anyr8dl09e5e8km875 (nonce 3b3820e39138fb903e7e8b3af23039d14e30d0fb4091fdd028aa3eca18fd588c)"
	segwitSig  = "IHzOd42nCJc5yUAWkyh7oHpcL/faTQjE1xEKxsNBBk5hLdk/4h4q6XZA0NhyXnR9qG1ixbxUFpZu0PiAZchANuE="
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stack struct {
	router *gin.Engine
	store  ports.ChallengeStore
}

func newStack(t *testing.T, balanceOracle ports.BalanceOracle, opts service.Options) *stack {
	t.Helper()
	challengeStore := store.NewMemoryStore(0)
	authService := service.NewAuthService(
		challengeStore,
		balanceOracle,
		issuer.NewJWTIssuer([]byte("testsecret-abcdefghijklmnopqrstuvwxyz012345")),
		nil,
		nil,
		opts,
	)
	return &stack{
		router: SetupRouter(authService),
		store:  challengeStore,
	}
}

func (s *stack) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *stack) get(t *testing.T, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestChallengeEndpoint(t *testing.T) {
	s := newStack(t, oracle.NewFixed(0), service.Options{})

	t.Run("issues challenge for valid address", func(t *testing.T) {
		w := s.postJSON(t, "/auth/bitcoin/challenge", gin.H{"address": legacyAddr})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, decodeBody(t, w)["challenge"], legacyAddr)
	})

	t.Run("malformed address", func(t *testing.T) {
		w := s.postJSON(t, "/auth/bitcoin/challenge", gin.H{"address": "not-an-address-but-long-enough"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unsupported encoding rejected before any signature exists", func(t *testing.T) {
		w := s.postJSON(t, "/auth/bitcoin/challenge", gin.H{"address": "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing body", func(t *testing.T) {
		w := s.postJSON(t, "/auth/bitcoin/challenge", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// With both checks bypassed, any signature string issues a token for a
// legacy address.
func TestVerifyEndpoint_BypassedChecks(t *testing.T) {
	s := newStack(t, oracle.NewFixed(0), service.Options{
		SkipSignatureCheck: true,
		SkipBalanceCheck:   true,
	})

	w := s.postJSON(t, "/auth/bitcoin/challenge", gin.H{"address": legacyAddr})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.postJSON(t, "/auth/bitcoin/verify", gin.H{"address": legacyAddr, "signature": "dummy"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Greater(t, len(decodeBody(t, w)["token"]), 20)
}

// A real compact signature over the exact challenge text with
// balance checking bypassed; replay after first use is a bad request.
func TestVerifyEndpoint_RealSignatureThenReplay(t *testing.T) {
	s := newStack(t, oracle.NewFixed(0), service.Options{SkipBalanceCheck: true})

	require.NoError(t, s.store.Put(context.Background(), &core.Challenge{
		ID:       "seeded",
		Address:  segwitAddr,
		Text:     segwitText,
		IssuedAt: time.Now(),
	}))

	w := s.postJSON(t, "/auth/bitcoin/verify", gin.H{"address": segwitAddr, "signature": segwitSig})
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"]
	assert.Contains(t, token, "ey")

	w = s.postJSON(t, "/auth/bitcoin/verify", gin.H{"address": segwitAddr, "signature": segwitSig})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// An oracle fixed at 5,000 sats against a 1,000,000 sat
// threshold yields 403.
func TestVerifyEndpoint_InsufficientFunds(t *testing.T) {
	s := newStack(t, oracle.NewFixed(5000), service.Options{})

	require.NoError(t, s.store.Put(context.Background(), &core.Challenge{
		ID:       "seeded",
		Address:  segwitAddr,
		Text:     segwitText,
		IssuedAt: time.Now(),
	}))

	w := s.postJSON(t, "/auth/bitcoin/verify", gin.H{"address": segwitAddr, "signature": segwitSig})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "insufficient")
}

func TestVerifyEndpoint_ExpiredChallenge(t *testing.T) {
	s := newStack(t, oracle.NewFixed(0), service.Options{
		ChallengeTTL:       time.Minute,
		SkipSignatureCheck: true,
		SkipBalanceCheck:   true,
	})

	require.NoError(t, s.store.Put(context.Background(), &core.Challenge{
		ID:       "seeded",
		Address:  legacyAddr,
		Text:     "stale",
		IssuedAt: time.Now().Add(-2 * time.Minute),
	}))

	w := s.postJSON(t, "/auth/bitcoin/verify", gin.H{"address": legacyAddr, "signature": "dummy"})
	assert.Equal(t, http.StatusGone, w.Code)

	// Consumed by the expired attempt: now a plain bad request.
	w = s.postJSON(t, "/auth/bitcoin/verify", gin.H{"address": legacyAddr, "signature": "dummy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyEndpoint_NoChallenge(t *testing.T) {
	s := newStack(t, oracle.NewFixed(0), service.Options{
		SkipSignatureCheck: true,
		SkipBalanceCheck:   true,
	})

	w := s.postJSON(t, "/auth/bitcoin/verify", gin.H{"address": legacyAddr, "signature": "dummy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyEndpoint_OracleOutage(t *testing.T) {
	s := newStack(t, oracle.NewFallback(nil), service.Options{SkipSignatureCheck: true})

	require.NoError(t, s.store.Put(context.Background(), &core.Challenge{
		ID:       "seeded",
		Address:  segwitAddr,
		Text:     segwitText,
		IssuedAt: time.Now(),
	}))

	w := s.postJSON(t, "/auth/bitcoin/verify", gin.H{"address": segwitAddr, "signature": "irrelevant"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMeEndpoint(t *testing.T) {
	s := newStack(t, oracle.NewFixed(0), service.Options{
		SkipSignatureCheck: true,
		SkipBalanceCheck:   true,
	})

	w := s.postJSON(t, "/auth/bitcoin/challenge", gin.H{"address": legacyAddr})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.postJSON(t, "/auth/bitcoin/verify", gin.H{"address": legacyAddr, "signature": "dummy"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"]

	t.Run("with token", func(t *testing.T) {
		w := s.get(t, "/api/me", token)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "btc:"+legacyAddr, body["id"])
		assert.Equal(t, legacyAddr, body["username"])
		assert.Equal(t, "user", body["role"])
	})

	t.Run("without token", func(t *testing.T) {
		w := s.get(t, "/api/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("with garbage token", func(t *testing.T) {
		w := s.get(t, "/api/me", "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	s := newStack(t, oracle.NewFixed(0), service.Options{})

	w := s.get(t, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
