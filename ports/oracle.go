package ports

import "context"

// BalanceOracle resolves the current spendable balance of a Bitcoin address
// in satoshis. Implementations are expected to be network-bound and must
// honor context cancellation.
type BalanceOracle interface {
	FetchBalance(ctx context.Context, address string) (uint64, error)
}
