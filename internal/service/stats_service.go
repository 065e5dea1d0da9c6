package service

import (
	"context"
	"fmt"

	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// StatsServiceImpl implements ports.StatisticsService. The satoshi
// aggregates come straight from the ledger; the USD valuation is
// best-effort and its absence never fails the request.
type StatsServiceImpl struct {
	txRepo   ports.TransactionRepository
	exchange ports.ExchangeRateProvider
	log      zerolog.Logger
}

// NewStatsService creates a new StatsServiceImpl.
func NewStatsService(txRepo ports.TransactionRepository, exchange ports.ExchangeRateProvider, log zerolog.Logger) *StatsServiceImpl {
	return &StatsServiceImpl{
		txRepo:   txRepo,
		exchange: exchange,
		log:      log,
	}
}

// PlatformStatistics reports the platform-wide transaction count and
// collected fees, valued in USD when a rate is available.
func (s *StatsServiceImpl) PlatformStatistics(ctx context.Context) (*ports.PlatformStatistics, error) {
	count, err := s.txRepo.CountAll(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("count transactions: %w", err))
	}

	profit, err := s.txRepo.TotalFeesCollected(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("sum fees: %w", err))
	}

	stats := &ports.PlatformStatistics{
		TotalTransactions: count,
		ProfitSatoshis:    profit,
	}

	usd, err := s.exchange.SatoshisToUSD(ctx, profit)
	if err != nil {
		s.log.Warn().Err(err).Msg("usd valuation unavailable, reporting satoshis only")
		return stats, nil
	}
	stats.ProfitUSD = usd
	stats.USDRateAvailable = true

	return stats, nil
}
