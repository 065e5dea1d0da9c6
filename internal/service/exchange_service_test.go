package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bitcoin-wallet-ledger/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testCacheTTL = 60 * time.Second

type exchangeTestDeps struct {
	svc    *ExchangeServiceImpl
	source *mocks.MockRateSource
	cache  *mocks.MockRateCache
	ctrl   *gomock.Controller
}

func setupExchangeService(t *testing.T) *exchangeTestDeps {
	ctrl := gomock.NewController(t)
	d := &exchangeTestDeps{
		source: mocks.NewMockRateSource(ctrl),
		cache:  mocks.NewMockRateCache(ctrl),
		ctrl:   ctrl,
	}
	d.svc = NewExchangeService(d.source, d.cache, testCacheTTL, zerolog.Nop())
	return d
}

func TestExchangeService_USDRate_FreshCacheHit(t *testing.T) {
	d := setupExchangeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	cached := decimal.NewFromInt(65_000)

	// A fresh cache hit never touches the upstream source.
	d.cache.EXPECT().GetFresh(ctx).Return(cached, true, nil)

	rate, err := d.svc.USDRate(ctx)
	require.NoError(t, err)
	assert.True(t, cached.Equal(rate))
}

func TestExchangeService_USDRate_CacheMissFetches(t *testing.T) {
	d := setupExchangeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	fetched := decimal.NewFromFloat(64_123.45)

	d.cache.EXPECT().GetFresh(ctx).Return(decimal.Zero, false, nil)
	d.source.EXPECT().FetchUSDRate(ctx).Return(fetched, nil)
	d.cache.EXPECT().SetFresh(ctx, fetched, testCacheTTL).Return(nil)
	d.cache.EXPECT().SetLastGood(ctx, fetched).Return(nil)

	rate, err := d.svc.USDRate(ctx)
	require.NoError(t, err)
	assert.True(t, fetched.Equal(rate))
}

func TestExchangeService_USDRate_FetchFailsFallsBackToLastGood(t *testing.T) {
	d := setupExchangeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	lastGood := decimal.NewFromInt(60_000)

	d.cache.EXPECT().GetFresh(ctx).Return(decimal.Zero, false, nil)
	d.source.EXPECT().FetchUSDRate(ctx).Return(decimal.Zero, errors.New("upstream timeout"))
	d.cache.EXPECT().GetLastGood(ctx).Return(lastGood, true, nil)

	rate, err := d.svc.USDRate(ctx)
	require.NoError(t, err)
	assert.True(t, lastGood.Equal(rate))
}

func TestExchangeService_USDRate_NothingAvailable(t *testing.T) {
	d := setupExchangeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.cache.EXPECT().GetFresh(ctx).Return(decimal.Zero, false, nil)
	d.source.EXPECT().FetchUSDRate(ctx).Return(decimal.Zero, errors.New("upstream timeout"))
	d.cache.EXPECT().GetLastGood(ctx).Return(decimal.Zero, false, nil)

	_, err := d.svc.USDRate(ctx)
	requireAppError(t, err, "SYS_003")
}

func TestExchangeService_USDRate_CacheErrorFallsThrough(t *testing.T) {
	d := setupExchangeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	fetched := decimal.NewFromInt(62_000)

	// A cache read failure is logged and treated as a miss.
	d.cache.EXPECT().GetFresh(ctx).Return(decimal.Zero, false, errors.New("redis down"))
	d.source.EXPECT().FetchUSDRate(ctx).Return(fetched, nil)
	d.cache.EXPECT().SetFresh(ctx, fetched, testCacheTTL).Return(errors.New("redis down"))
	d.cache.EXPECT().SetLastGood(ctx, fetched).Return(errors.New("redis down"))

	rate, err := d.svc.USDRate(ctx)
	require.NoError(t, err)
	assert.True(t, fetched.Equal(rate))
}

func TestExchangeService_SatoshisToUSD(t *testing.T) {
	d := setupExchangeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	rate := decimal.NewFromInt(64_000)

	d.cache.EXPECT().GetFresh(ctx).Return(rate, true, nil).Times(2)

	// One full BTC at the rate.
	usd, err := d.svc.SatoshisToUSD(ctx, 100_000_000)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(64_000).Equal(usd))

	// 1500 satoshis: 0.000015 BTC * 64000 = 0.96 USD.
	usd, err = d.svc.SatoshisToUSD(ctx, 1_500)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(0.96).Equal(usd))
}
