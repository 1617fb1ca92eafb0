package ports

import (
	"context"

	"github.com/blockboard/povauth/core"
)

// ChallengeStore is an address-keyed registry of pending challenges.
// TTL policy is the caller's concern; the store only guarantees one pending
// challenge per address and atomic single-use consumption.
type ChallengeStore interface {
	// Put records the challenge under its address, replacing any prior
	// pending challenge for that address.
	Put(ctx context.Context, challenge *core.Challenge) error

	// Take atomically removes and returns the pending challenge for the
	// address. It returns core.ErrNoChallenge when none is pending; two
	// concurrent takes for the same address never both succeed.
	Take(ctx context.Context, address string) (*core.Challenge, error)
}
