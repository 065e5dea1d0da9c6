package service

import (
	"context"
	"fmt"
	"time"

	"bitcoin-wallet-ledger/internal/core/domain"
	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ExchangeServiceImpl implements ports.ExchangeRateProvider. Rates are
// served from the fresh cache entry while it lives, refetched from the
// upstream source when it expires, and backed by the last-good entry
// when the upstream is down. An error escapes only when all three are
// empty.
type ExchangeServiceImpl struct {
	source   ports.RateSource
	cache    ports.RateCache
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewExchangeService creates a new ExchangeServiceImpl.
func NewExchangeService(source ports.RateSource, cache ports.RateCache, cacheTTL time.Duration, log zerolog.Logger) *ExchangeServiceImpl {
	return &ExchangeServiceImpl{
		source:   source,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// USDRate returns the current BTC/USD rate.
func (s *ExchangeServiceImpl) USDRate(ctx context.Context) (decimal.Decimal, error) {
	rate, ok, err := s.cache.GetFresh(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate cache read failed, falling through to upstream")
	}
	if ok {
		return rate, nil
	}

	rate, fetchErr := s.source.FetchUSDRate(ctx)
	if fetchErr == nil {
		if err := s.cache.SetFresh(ctx, rate, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache fresh rate")
		}
		if err := s.cache.SetLastGood(ctx, rate); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache last-good rate")
		}
		return rate, nil
	}

	s.log.Warn().Err(fetchErr).Msg("upstream rate fetch failed, trying last-good rate")

	rate, ok, err = s.cache.GetLastGood(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("last-good cache read failed")
	}
	if ok {
		return rate, nil
	}

	return decimal.Zero, apperror.ErrExchangeRateUnavailable(fmt.Errorf("fetch rate: %w", fetchErr))
}

// SatoshisToUSD values an amount of satoshis at the current rate.
func (s *ExchangeServiceImpl) SatoshisToUSD(ctx context.Context, satoshis int64) (decimal.Decimal, error) {
	rate, err := s.USDRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	btc := decimal.NewFromInt(satoshis).Div(decimal.NewFromInt(domain.SatoshisPerBTC))
	return btc.Mul(rate), nil
}
