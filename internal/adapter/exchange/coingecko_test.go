package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitcoin-wallet-ledger/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *CoinGeckoClient {
	return NewCoinGeckoClient(config.ExchangeConfig{
		RateURL:     url,
		HTTPTimeout: 2 * time.Second,
	}, zerolog.Nop())
}

func TestCoinGeckoClient_FetchUSDRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin":{"usd":64123.45}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	rate, err := newTestClient(srv.URL).FetchUSDRate(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(64123.45).Equal(rate))
}

func TestCoinGeckoClient_FetchUSDRate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchUSDRate(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCoinGeckoClient_FetchUSDRate_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchUSDRate(context.Background())
	assert.Error(t, err)
}

func TestCoinGeckoClient_FetchUSDRate_MissingRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchUSDRate(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive")
}

func TestCoinGeckoClient_FetchUSDRate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).FetchUSDRate(ctx)
	assert.Error(t, err)
}
