package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBlockCypherBase is the production BlockCypher mainnet endpoint.
const DefaultBlockCypherBase = "https://api.blockcypher.com/v1/btc/main"

// BlockCypher fetches an address's aggregate balance from a
// BlockCypher-compatible API.
type BlockCypher struct {
	base   string
	client *http.Client
}

// NewBlockCypher creates a BlockCypher provider against the given base URL.
func NewBlockCypher(base string) *BlockCypher {
	return &BlockCypher{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: requestTimeout},
	}
}

// FetchBalance returns the final_balance reported for the address.
func (b *BlockCypher) FetchBalance(ctx context.Context, address string) (uint64, error) {
	endpoint := fmt.Sprintf("%s/addrs/%s/balance", b.base, url.PathEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build balance request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("balance endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		FinalBalance uint64 `json:"final_balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode balance response: %w", err)
	}

	return body.FinalBalance, nil
}
