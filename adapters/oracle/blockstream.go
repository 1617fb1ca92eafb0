// Package oracle resolves Bitcoin address balances from external ledger
// indexers, with a single-hop fallback between sources.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBlockstreamBase is the production Blockstream API endpoint.
const DefaultBlockstreamBase = "https://blockstream.info/api"

const requestTimeout = 10 * time.Second

// Blockstream fetches balances by listing an address's unspent outputs from
// a Blockstream-compatible API and summing their values.
type Blockstream struct {
	base   string
	client *http.Client
}

// NewBlockstream creates a Blockstream provider against the given base URL.
func NewBlockstream(base string) *Blockstream {
	return &Blockstream{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: requestTimeout},
	}
}

type utxo struct {
	TxID  string `json:"txid"`
	Vout  uint32 `json:"vout"`
	Value uint64 `json:"value"`
}

// FetchBalance sums the values of all unspent outputs for the address.
func (b *Blockstream) FetchBalance(ctx context.Context, address string) (uint64, error) {
	endpoint := fmt.Sprintf("%s/address/%s/utxo", b.base, url.PathEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build utxo request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch utxos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("utxo endpoint returned status %d", resp.StatusCode)
	}

	var utxos []utxo
	if err := json.NewDecoder(resp.Body).Decode(&utxos); err != nil {
		return 0, fmt.Errorf("decode utxo response: %w", err)
	}

	var total uint64
	for _, u := range utxos {
		total += u.Value
	}
	return total, nil
}
