package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bitcoin-wallet-ledger/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CoinGeckoClient implements ports.RateSource against the CoinGecko
// simple-price endpoint.
type CoinGeckoClient struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewCoinGeckoClient creates a new CoinGeckoClient.
func NewCoinGeckoClient(cfg config.ExchangeConfig, log zerolog.Logger) *CoinGeckoClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CoinGeckoClient{
		url:    cfg.RateURL,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Response shape: {"bitcoin":{"usd":64123.45}}
type coinGeckoResponse struct {
	Bitcoin struct {
		USD decimal.Decimal `json:"usd"`
	} `json:"bitcoin"`
}

// FetchUSDRate fetches the current BTC/USD rate.
func (c *CoinGeckoClient) FetchUSDRate(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("rate provider returned status %d: %s", resp.StatusCode, body)
	}

	var parsed coinGeckoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return decimal.Zero, fmt.Errorf("decode rate response: %w", err)
	}
	if parsed.Bitcoin.USD.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("rate provider returned non-positive rate %s", parsed.Bitcoin.USD)
	}

	c.log.Debug().
		Str("rate", parsed.Bitcoin.USD.String()).
		Msg("fetched BTC/USD rate")

	return parsed.Bitcoin.USD, nil
}
