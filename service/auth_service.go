package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/blockboard/povauth/core"
	"github.com/blockboard/povauth/internal/btcmsg"
	"github.com/blockboard/povauth/ports"
	"github.com/google/uuid"
)

// SubjectPrefix namespaces Bitcoin-derived subjects so they can never
// collide with subjects minted for other identity providers.
const SubjectPrefix = "btc:"

// Address length sanity bounds, applied before any parsing.
const (
	minAddressLen = 26
	maxAddressLen = 100
)

const (
	// DefaultChallengeTTL is how long an issued challenge stays valid.
	DefaultChallengeTTL = 5 * time.Minute

	// DefaultMinBalanceSats is the minimum proven balance (0.01 BTC).
	DefaultMinBalanceSats uint64 = 1_000_000
)

// Options configures an AuthService. The Skip fields exist solely so
// automated tests can exercise balance policy and issuance plumbing without
// a live signed message; they are plain struct fields with no environment
// binding, so production wiring cannot enable them by accident.
type Options struct {
	ChallengeTTL   time.Duration
	MinBalanceSats uint64

	// SkipSignatureCheck disables signature verification. Test-only.
	SkipSignatureCheck bool
	// SkipBalanceCheck disables the balance lookup. Test-only.
	SkipBalanceCheck bool
}

// AuthService orchestrates the challenge-issue, verify and token-issue flow.
type AuthService struct {
	store  ports.ChallengeStore
	oracle ports.BalanceOracle
	issuer ports.Issuer
	events ports.EventPublisher
	logger *slog.Logger

	challengeTTL   time.Duration
	minBalanceSats uint64
	skipSignature  bool
	skipBalance    bool
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store ports.ChallengeStore,
	oracle ports.BalanceOracle,
	issuer ports.Issuer,
	events ports.EventPublisher,
	logger *slog.Logger,
	opts Options,
) *AuthService {
	if opts.ChallengeTTL <= 0 {
		opts.ChallengeTTL = DefaultChallengeTTL
	}
	if opts.MinBalanceSats == 0 {
		opts.MinBalanceSats = DefaultMinBalanceSats
	}
	if events == nil {
		events = nopEvents{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &AuthService{
		store:          store,
		oracle:         oracle,
		issuer:         issuer,
		events:         events,
		logger:         logger,
		challengeTTL:   opts.ChallengeTTL,
		minBalanceSats: opts.MinBalanceSats,
		skipSignature:  opts.SkipSignatureCheck,
		skipBalance:    opts.SkipBalanceCheck,
	}
}

// CreateChallenge validates the address and issues a fresh challenge for it,
// replacing any pending one.
func (s *AuthService) CreateChallenge(ctx context.Context, address string) (string, error) {
	if len(address) < minAddressLen || len(address) > maxAddressLen {
		return "", core.ErrInvalidAddress
	}
	if err := btcmsg.ValidateAddress(address); err != nil {
		s.logger.Debug("rejected challenge request", "address", address, "err", err)
		return "", core.ErrInvalidAddress
	}

	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBytes)

	// The text binds the signed artifact to both the address and this
	// specific request instance.
	challenge := &core.Challenge{
		ID:       uuid.New().String(),
		Address:  address,
		Nonce:    nonce,
		Text:     fmt.Sprintf("Prove you own Bitcoin address %s (nonce %s)", address, nonce),
		IssuedAt: time.Now(),
	}

	if err := s.store.Put(ctx, challenge); err != nil {
		return "", fmt.Errorf("failed to store challenge: %w", err)
	}

	return challenge.Text, nil
}

// VerifyAndIssue consumes the pending challenge for the address, verifies
// the signature over it, checks the proven balance and mints a token.
//
// The challenge is consumed before any other check runs, so one attempt
// always invalidates it, success or not.
func (s *AuthService) VerifyAndIssue(ctx context.Context, address, signature string) (string, error) {
	challenge, err := s.store.Take(ctx, address)
	if err != nil {
		return "", err
	}

	if time.Since(challenge.IssuedAt) > s.challengeTTL {
		return "", core.ErrChallengeExpired
	}

	if !s.skipSignature {
		if err := btcmsg.Verify(address, challenge.Text, signature); err != nil {
			// Detail stays in the log; callers get one opaque signal so
			// error variance cannot be used as a verification oracle.
			s.logger.Warn("signature verification failed", "address", address, "err", err)
			return "", core.ErrInvalidSignature
		}
	}

	if !s.skipBalance {
		sats, err := s.oracle.FetchBalance(ctx, address)
		if err != nil {
			s.logger.Error("balance lookup failed", "address", address, "err", err)
			return "", fmt.Errorf("fetch balance: %w", core.ErrOracleUnavailable)
		}
		if sats < s.minBalanceSats {
			s.logger.Info("balance below threshold",
				"address", address, "sats", sats, "min", s.minBalanceSats)
			return "", core.ErrInsufficientFunds
		}
	}

	subject := SubjectPrefix + address
	token, err := s.issuer.Issue(subject, []core.Role{core.RoleUser})
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	// Best effort: the login already succeeded, a missed event must not
	// undo it.
	if err := s.events.PublishLogin(ctx, address, subject); err != nil {
		s.logger.Warn("failed to publish login event", "address", address, "err", err)
	}

	return token, nil
}

// ValidateToken parses a bearer token and returns the identity it certifies.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*core.Identity, error) {
	return s.issuer.Validate(token)
}

type nopEvents struct{}

func (nopEvents) PublishLogin(ctx context.Context, address string, subject string) error {
	return nil
}
