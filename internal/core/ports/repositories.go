package ports

import (
	"context"

	"bitcoin-wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for users.
// GetByIDForUpdate locks the user row so the wallet-count check and the
// wallet insert serialize against concurrent creations for the same user.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks so balance
// mutations commit atomically with the owning operation.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
	GetByAddressForUpdate(ctx context.Context, tx pgx.Tx, address string) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	CountByUserID(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int, error)
	// UpdateBalance fails if the wallet does not already exist.
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balanceSatoshis int64) error
}

// TransactionRepository defines persistence operations for the immutable
// transfer ledger. Records are write-once; there is no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// ListByWalletAddress returns transactions touching the address,
	// newest first.
	ListByWalletAddress(ctx context.Context, address string) ([]domain.Transaction, error)
	// ListByWalletAddresses returns transactions touching any of the
	// addresses, newest first, each transaction reported once even when
	// both endpoints belong to the set.
	ListByWalletAddresses(ctx context.Context, addresses []string) ([]domain.Transaction, error)
	TotalFeesCollected(ctx context.Context) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
