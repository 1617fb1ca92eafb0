package oracle

import "context"

// Fixed is a balance provider that returns a constant value without any
// network access. It exists so tests can exercise balance policy without a
// live indexer; nothing in cmd/ constructs one.
type Fixed struct {
	sats uint64
}

// NewFixed creates a provider that always reports the given balance.
func NewFixed(sats uint64) *Fixed {
	return &Fixed{sats: sats}
}

func (f *Fixed) FetchBalance(ctx context.Context, address string) (uint64, error) {
	return f.sats, nil
}
