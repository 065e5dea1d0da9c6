package postgres

import (
	"context"
	"errors"
	"fmt"

	"bitcoin-wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. The transactions
// table is append-only; there is no update or delete path.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a transaction record within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	query := `INSERT INTO transactions (id, from_address, to_address, amount_satoshis, fee_satoshis, internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		txn.ID, txn.FromAddress, txn.ToAddress, txn.AmountSatoshis,
		txn.FeeSatoshis, txn.Internal, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by its UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, from_address, to_address, amount_satoshis, fee_satoshis, internal, created_at
		FROM transactions WHERE id = $1`

	txn := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&txn.ID, &txn.FromAddress, &txn.ToAddress, &txn.AmountSatoshis,
		&txn.FeeSatoshis, &txn.Internal, &txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return txn, nil
}

// ListByWalletAddress fetches all transactions touching the address,
// newest first.
func (r *TransactionRepo) ListByWalletAddress(ctx context.Context, address string) ([]domain.Transaction, error) {
	query := `SELECT id, from_address, to_address, amount_satoshis, fee_satoshis, internal, created_at
		FROM transactions WHERE from_address = $1 OR to_address = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("list transactions by address: %w", err)
	}
	return scanTransactions(rows)
}

// ListByWalletAddresses fetches all transactions touching any of the
// addresses, newest first. Each transaction appears once even when both
// endpoints belong to the set.
func (r *TransactionRepo) ListByWalletAddresses(ctx context.Context, addresses []string) ([]domain.Transaction, error) {
	if len(addresses) == 0 {
		return []domain.Transaction{}, nil
	}

	query := `SELECT id, from_address, to_address, amount_satoshis, fee_satoshis, internal, created_at
		FROM transactions WHERE from_address = ANY($1) OR to_address = ANY($1)
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, addresses)
	if err != nil {
		return nil, fmt.Errorf("list transactions by addresses: %w", err)
	}
	return scanTransactions(rows)
}

// TotalFeesCollected sums the fees of every recorded transaction.
func (r *TransactionRepo) TotalFeesCollected(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(fee_satoshis), 0) FROM transactions`

	var total int64
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum fees: %w", err)
	}
	return total, nil
}

// CountAll counts every recorded transaction.
func (r *TransactionRepo) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions`

	var count int64
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		if err := rows.Scan(&txn.ID, &txn.FromAddress, &txn.ToAddress, &txn.AmountSatoshis,
			&txn.FeeSatoshis, &txn.Internal, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}
