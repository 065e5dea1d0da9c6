package ports

import (
	"context"
	"time"

	"bitcoin-wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// KeyGenerator creates and validates API-key credentials.
type KeyGenerator interface {
	Generate() (string, error)
	ValidFormat(key string) bool
}

// Locker serializes ledger operations on keyed resources. Acquire takes
// every key in one call (sorted internally) and returns a release
// function; it fails after a bounded wait so contended operations
// surface a retryable error instead of blocking indefinitely.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (func(), error)
}

// RateSource fetches the current BTC/USD rate from an upstream provider.
type RateSource interface {
	FetchUSDRate(ctx context.Context) (decimal.Decimal, error)
}

// RateCache stores exchange-rate values. The fresh entry expires after
// its TTL; the last-good entry survives until overwritten and backs the
// fallback path when the upstream fetch fails.
type RateCache interface {
	GetFresh(ctx context.Context) (decimal.Decimal, bool, error)
	SetFresh(ctx context.Context, rate decimal.Decimal, ttl time.Duration) error
	GetLastGood(ctx context.Context) (decimal.Decimal, bool, error)
	SetLastGood(ctx context.Context, rate decimal.Decimal) error
}

// ExchangeRateProvider serves BTC/USD conversions. Reporting only —
// never consulted for ledger correctness.
type ExchangeRateProvider interface {
	USDRate(ctx context.Context) (decimal.Decimal, error)
	SatoshisToUSD(ctx context.Context, satoshis int64) (decimal.Decimal, error)
}

// --- Service Ports (Business Logic) ---

// UserService defines registration and API-key authentication.
type UserService interface {
	Register(ctx context.Context) (*RegistrationResult, error)
	Authenticate(ctx context.Context, apiKey string) (*domain.User, error)
}

// RegistrationResult holds the credentials issued at registration. The
// API key is shown exactly once.
type RegistrationResult struct {
	UserID uuid.UUID
	APIKey string
}

// LedgerService is the public wallet-ledger orchestrator.
type LedgerService interface {
	CreateWallet(ctx context.Context, userID uuid.UUID) (*CreateWalletResult, error)
	ListWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	GetWallet(ctx context.Context, userID uuid.UUID, address string) (*domain.Wallet, error)
	Deposit(ctx context.Context, userID uuid.UUID, address string, amountSatoshis int64) (*domain.Wallet, error)
	Withdraw(ctx context.Context, userID uuid.UUID, address string, amountSatoshis int64) (*domain.Wallet, error)
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error)
	WalletTransactions(ctx context.Context, userID uuid.UUID, address string) ([]domain.Transaction, error)
	UserTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
}

// CreateWalletResult holds the outcome of a successful wallet creation.
type CreateWalletResult struct {
	WalletID        uuid.UUID
	Address         string
	BalanceSatoshis int64
}

// TransferRequest holds validated input for a transfer.
type TransferRequest struct {
	UserID         uuid.UUID
	FromAddress    string
	ToAddress      string
	AmountSatoshis int64
	Internal       bool
}

// StatisticsService reports platform-wide ledger aggregates.
type StatisticsService interface {
	PlatformStatistics(ctx context.Context) (*PlatformStatistics, error)
}

// PlatformStatistics is the reporting aggregate. ProfitUSD is a
// best-effort valuation of the collected fees; it is zero when no
// exchange rate is available.
type PlatformStatistics struct {
	TotalTransactions int64
	ProfitSatoshis    int64
	ProfitUSD         decimal.Decimal
	USDRateAvailable  bool
}
