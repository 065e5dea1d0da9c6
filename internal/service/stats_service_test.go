package service

import (
	"context"
	"errors"
	"testing"

	"bitcoin-wallet-ledger/internal/core/ports/mocks"
	"bitcoin-wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type statsTestDeps struct {
	svc      *StatsServiceImpl
	txRepo   *mocks.MockTransactionRepository
	exchange *mocks.MockExchangeRateProvider
	ctrl     *gomock.Controller
}

func setupStatsService(t *testing.T) *statsTestDeps {
	ctrl := gomock.NewController(t)
	d := &statsTestDeps{
		txRepo:   mocks.NewMockTransactionRepository(ctrl),
		exchange: mocks.NewMockExchangeRateProvider(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewStatsService(d.txRepo, d.exchange, zerolog.Nop())
	return d
}

func TestStatsService_PlatformStatistics_Success(t *testing.T) {
	d := setupStatsService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.txRepo.EXPECT().CountAll(ctx).Return(int64(42), nil)
	d.txRepo.EXPECT().TotalFeesCollected(ctx).Return(int64(150_000), nil)
	d.exchange.EXPECT().SatoshisToUSD(ctx, int64(150_000)).Return(decimal.NewFromInt(96), nil)

	stats, err := d.svc.PlatformStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalTransactions)
	assert.Equal(t, int64(150_000), stats.ProfitSatoshis)
	assert.True(t, stats.USDRateAvailable)
	assert.True(t, decimal.NewFromInt(96).Equal(stats.ProfitUSD))
}

func TestStatsService_PlatformStatistics_RateUnavailable(t *testing.T) {
	d := setupStatsService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.txRepo.EXPECT().CountAll(ctx).Return(int64(7), nil)
	d.txRepo.EXPECT().TotalFeesCollected(ctx).Return(int64(3_000), nil)
	d.exchange.EXPECT().SatoshisToUSD(ctx, int64(3_000)).
		Return(decimal.Zero, apperror.ErrExchangeRateUnavailable(errors.New("upstream down")))

	// The satoshi aggregates still come back when valuation fails.
	stats, err := d.svc.PlatformStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.TotalTransactions)
	assert.Equal(t, int64(3_000), stats.ProfitSatoshis)
	assert.False(t, stats.USDRateAvailable)
	assert.True(t, stats.ProfitUSD.IsZero())
}

func TestStatsService_PlatformStatistics_StorageError(t *testing.T) {
	d := setupStatsService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.txRepo.EXPECT().CountAll(ctx).Return(int64(0), errors.New("connection reset"))

	stats, err := d.svc.PlatformStatistics(ctx)
	assert.Nil(t, stats)
	requireAppError(t, err, "SYS_001")
}
