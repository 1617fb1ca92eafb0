package core

import "errors"

var (
	// ErrInvalidAddress covers empty, out-of-bounds, unparseable and
	// unsupported-encoding addresses.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNoChallenge means no challenge is pending for the address: it was
	// never issued, or a prior verify attempt already consumed it.
	ErrNoChallenge = errors.New("no pending challenge")

	// ErrInvalidSignature is the single signal for every signature failure
	// mode. The underlying reason is logged, never surfaced to callers.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrChallengeExpired means the challenge outlived its TTL. It has
	// still been consumed; the caller must request a new one.
	ErrChallengeExpired = errors.New("challenge has expired")

	// ErrInsufficientFunds means the balance was measured successfully but
	// falls below the configured minimum.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrOracleUnavailable means every balance source failed. This is an
	// infrastructure failure, not a policy outcome.
	ErrOracleUnavailable = errors.New("balance sources unavailable")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)
