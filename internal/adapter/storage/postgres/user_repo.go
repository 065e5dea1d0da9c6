package postgres

import (
	"context"
	"errors"
	"fmt"

	"bitcoin-wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user into the database.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, api_key, created_at) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, u.ID, u.APIKey, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by its UUID, with the ids of its wallets.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, api_key, created_at FROM users WHERE id = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.APIKey, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	if err := r.loadWalletIDs(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByIDForUpdate fetches a user by ID with pessimistic locking. This
// MUST be called within a transaction. Wallet ids are not loaded; callers
// holding the lock count wallets through the wallet repository instead.
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, api_key, created_at FROM users WHERE id = $1 FOR UPDATE`

	u := &domain.User{}
	err := tx.QueryRow(ctx, query, id).Scan(&u.ID, &u.APIKey, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user for update: %w", err)
	}
	return u, nil
}

// GetByAPIKey fetches a user by its API key.
func (r *UserRepo) GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	query := `SELECT id, api_key, created_at FROM users WHERE api_key = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, apiKey).Scan(&u.ID, &u.APIKey, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by api key: %w", err)
	}

	if err := r.loadWalletIDs(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) loadWalletIDs(ctx context.Context, u *domain.User) error {
	query := `SELECT id FROM wallets WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, u.ID)
	if err != nil {
		return fmt.Errorf("load wallet ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan wallet id: %w", err)
		}
		u.WalletIDs = append(u.WalletIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate wallet ids: %w", err)
	}
	return nil
}
