package oracle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blockboard/povauth/core"
	"github.com/blockboard/povauth/ports"
)

// Fallback tries an ordered list of balance providers and returns the first
// successful result. There are no retries beyond moving to the next
// provider; when every provider fails the error is an infrastructure
// failure, distinct from any balance policy outcome.
type Fallback struct {
	providers []ports.BalanceOracle
	logger    *slog.Logger
}

// NewFallback creates a fallback chain over the given providers, tried in
// order.
func NewFallback(logger *slog.Logger, providers ...ports.BalanceOracle) *Fallback {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fallback{providers: providers, logger: logger}
}

// FetchBalance returns the first provider's successful answer.
func (f *Fallback) FetchBalance(ctx context.Context, address string) (uint64, error) {
	for i, provider := range f.providers {
		sats, err := provider.FetchBalance(ctx, address)
		if err == nil {
			return sats, nil
		}
		f.logger.Warn("balance provider failed",
			"provider", fmt.Sprintf("%T", provider),
			"position", i,
			"err", err)

		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
	}
	return 0, core.ErrOracleUnavailable
}
