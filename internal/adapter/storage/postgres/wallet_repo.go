package postgres

import (
	"context"
	"errors"
	"fmt"

	"bitcoin-wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet within a transaction.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, address, user_id, balance_satoshis, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		w.ID, w.Address, w.UserID, w.BalanceSatoshis, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, address, user_id, balance_satoshis, created_at, updated_at
		FROM wallets WHERE id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.Address, &w.UserID, &w.BalanceSatoshis, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return w, nil
}

// GetByAddress fetches a wallet by address (non-locking read).
func (r *WalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `SELECT id, address, user_id, balance_satoshis, created_at, updated_at
		FROM wallets WHERE address = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, address).Scan(
		&w.ID, &w.Address, &w.UserID, &w.BalanceSatoshis, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return w, nil
}

// GetByAddressForUpdate fetches a wallet by address with pessimistic
// locking. This MUST be called within a transaction.
func (r *WalletRepo) GetByAddressForUpdate(ctx context.Context, tx pgx.Tx, address string) (*domain.Wallet, error) {
	query := `SELECT id, address, user_id, balance_satoshis, created_at, updated_at
		FROM wallets WHERE address = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, address).Scan(
		&w.ID, &w.Address, &w.UserID, &w.BalanceSatoshis, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// GetByUserID fetches all wallets owned by a user, oldest first.
func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT id, address, user_id, balance_satoshis, created_at, updated_at
		FROM wallets WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallets by user id: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.ID, &w.Address, &w.UserID, &w.BalanceSatoshis, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

// CountByUserID counts a user's wallets within a transaction. Used under
// the user row lock so the wallet-limit check is race-free.
func (r *WalletRepo) CountByUserID(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM wallets WHERE user_id = $1`

	var count int
	if err := tx.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count wallets: %w", err)
	}
	return count, nil
}

// UpdateBalance updates a wallet's balance within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balanceSatoshis int64) error {
	query := `UPDATE wallets SET balance_satoshis = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balanceSatoshis, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}
