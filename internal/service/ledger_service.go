package service

import (
	"context"
	"errors"
	"fmt"

	"bitcoin-wallet-ledger/internal/core/domain"
	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/pkg/apperror"
	"bitcoin-wallet-ledger/pkg/keylock"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService with pessimistic
// locking: every balance mutation runs under the keyed lock(s) for the
// wallets it touches, then inside one database transaction with the
// affected rows locked FOR UPDATE.
type LedgerServiceImpl struct {
	userRepo               ports.UserRepository
	walletRepo             ports.WalletRepository
	txRepo                 ports.TransactionRepository
	transactor             ports.DBTransactor
	locker                 ports.Locker
	initialBalanceSatoshis int64
	maxWalletsPerUser      int
	log                    zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	userRepo ports.UserRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	locker ports.Locker,
	initialBalanceSatoshis int64,
	maxWalletsPerUser int,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		userRepo:               userRepo,
		walletRepo:             walletRepo,
		txRepo:                 txRepo,
		transactor:             transactor,
		locker:                 locker,
		initialBalanceSatoshis: initialBalanceSatoshis,
		maxWalletsPerUser:      maxWalletsPerUser,
		log:                    log,
	}
}

// Lock keys are namespaced so a user id can never collide with a wallet
// address.
func walletLockKey(address string) string { return "wallet:" + address }
func userLockKey(id uuid.UUID) string     { return "user:" + id.String() }

// acquire maps a lock-acquisition timeout to the one retryable error in
// the taxonomy.
func (s *LedgerServiceImpl) acquire(ctx context.Context, keys ...string) (func(), error) {
	release, err := s.locker.Acquire(ctx, keys...)
	if err != nil {
		if errors.Is(err, keylock.ErrAcquireTimeout) {
			return nil, apperror.ErrContention(err)
		}
		return nil, apperror.InternalError(fmt.Errorf("acquire lock: %w", err))
	}
	return release, nil
}

// CreateWallet creates a wallet for the user, enforcing the per-user
// wallet limit. The count check and the insert run under the user's
// keyed lock and inside one transaction with the user row locked, so
// two concurrent creations can never both pass the limit check.
func (s *LedgerServiceImpl) CreateWallet(ctx context.Context, userID uuid.UUID) (*ports.CreateWalletResult, error) {
	release, err := s.acquire(ctx, userLockKey(userID))
	if err != nil {
		return nil, err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	user, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("lock user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidAPIKey()
	}

	count, err := s.walletRepo.CountByUserID(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("count wallets: %w", err))
	}
	if count >= s.maxWalletsPerUser {
		return nil, apperror.ErrWalletLimitExceeded(s.maxWalletsPerUser)
	}

	wallet := domain.NewWallet(userID, s.initialBalanceSatoshis)
	if err := s.walletRepo.Create(ctx, dbTx, wallet); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("create wallet: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("address", wallet.Address).
		Str("user_id", userID.String()).
		Int64("balance", wallet.BalanceSatoshis).
		Msg("wallet created")

	return &ports.CreateWalletResult{
		WalletID:        wallet.ID,
		Address:         wallet.Address,
		BalanceSatoshis: wallet.BalanceSatoshis,
	}, nil
}

// ListWallets returns every wallet owned by the user.
func (s *LedgerServiceImpl) ListWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// GetWallet returns one wallet by address, enforcing ownership.
func (s *LedgerServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID, address string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if !wallet.OwnedBy(userID) {
		return nil, apperror.ErrUnauthorizedAccess()
	}
	return wallet, nil
}

// Deposit credits a wallet owned by the user.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, userID uuid.UUID, address string, amountSatoshis int64) (*domain.Wallet, error) {
	if amountSatoshis <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.mutateBalance(ctx, userID, address, func(w *domain.Wallet) error {
		return w.Deposit(amountSatoshis)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("address", address).
		Int64("amount", amountSatoshis).
		Int64("balance", wallet.BalanceSatoshis).
		Msg("deposit applied")

	return wallet, nil
}

// Withdraw debits a wallet owned by the user.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, userID uuid.UUID, address string, amountSatoshis int64) (*domain.Wallet, error) {
	if amountSatoshis <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	wallet, err := s.mutateBalance(ctx, userID, address, func(w *domain.Wallet) error {
		return w.Withdraw(amountSatoshis)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("address", address).
		Int64("amount", amountSatoshis).
		Int64("balance", wallet.BalanceSatoshis).
		Msg("withdrawal applied")

	return wallet, nil
}

// mutateBalance runs one single-wallet mutation under the wallet's keyed
// lock: lock key, begin tx, lock row, apply, persist, commit.
func (s *LedgerServiceImpl) mutateBalance(ctx context.Context, userID uuid.UUID, address string, apply func(*domain.Wallet) error) (*domain.Wallet, error) {
	release, err := s.acquire(ctx, walletLockKey(address))
	if err != nil {
		return nil, err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByAddressForUpdate(ctx, dbTx, address)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	if !wallet.OwnedBy(userID) {
		return nil, apperror.ErrUnauthorizedAccess()
	}

	if err := apply(wallet); err != nil {
		return nil, err
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, wallet.BalanceSatoshis); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("update balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	return wallet, nil
}

// Transfer moves funds between two wallets atomically. Both wallet locks
// are acquired in one call (the locker orders them internally, so two
// opposite-direction transfers cannot deadlock), then both rows are
// locked and mutated inside one database transaction together with the
// transaction record.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transaction, error) {
	if req.AmountSatoshis <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.FromAddress == "" || req.ToAddress == "" {
		return nil, apperror.ErrInvalidAddress()
	}
	if req.FromAddress == req.ToAddress {
		return nil, apperror.ErrSameWalletTransfer()
	}

	release, err := s.acquire(ctx, walletLockKey(req.FromAddress), walletLockKey(req.ToAddress))
	if err != nil {
		return nil, err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Row locks follow the same canonical order as the keyed locks.
	first, second := req.FromAddress, req.ToAddress
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*domain.Wallet, 2)
	for _, addr := range []string{first, second} {
		w, err := s.walletRepo.GetByAddressForUpdate(ctx, dbTx, addr)
		if err != nil {
			return nil, apperror.ErrPersistence(fmt.Errorf("lock wallet: %w", err))
		}
		if w == nil {
			return nil, apperror.ErrWalletNotFound()
		}
		locked[addr] = w
	}
	from, to := locked[req.FromAddress], locked[req.ToAddress]

	if !from.OwnedBy(req.UserID) {
		return nil, apperror.ErrUnauthorizedAccess()
	}

	txn, err := domain.Transfer(from, to, req.AmountSatoshis, req.Internal)
	if err != nil {
		return nil, err
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, from.ID, from.BalanceSatoshis); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("update sender balance: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, to.ID, to.BalanceSatoshis); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("update recipient balance: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("from", txn.FromAddress).
		Str("to", txn.ToAddress).
		Int64("amount", txn.AmountSatoshis).
		Int64("fee", txn.FeeSatoshis).
		Bool("internal", txn.Internal).
		Msg("transfer completed")

	return txn, nil
}

// WalletTransactions returns the transaction history of one wallet,
// newest first, after an ownership check.
func (s *LedgerServiceImpl) WalletTransactions(ctx context.Context, userID uuid.UUID, address string) ([]domain.Transaction, error) {
	if _, err := s.GetWallet(ctx, userID, address); err != nil {
		return nil, err
	}

	txns, err := s.txRepo.ListByWalletAddress(ctx, address)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// UserTransactions returns every transaction touching any wallet the
// user owns, newest first.
func (s *LedgerServiceImpl) UserTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	wallets, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("list wallets: %w", err))
	}
	if len(wallets) == 0 {
		return []domain.Transaction{}, nil
	}

	addresses := make([]string, 0, len(wallets))
	for _, w := range wallets {
		addresses = append(addresses, w.Address)
	}

	txns, err := s.txRepo.ListByWalletAddresses(ctx, addresses)
	if err != nil {
		return nil, apperror.ErrPersistence(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}
