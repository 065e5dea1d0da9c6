package domain

import (
	"time"

	"bitcoin-wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// SatoshisPerBTC is the number of satoshis in one bitcoin.
const SatoshisPerBTC = 100_000_000

// Wallet is a user-owned balance aggregate. Address is the external
// handle; it and the owner are immutable after creation. The balance is
// mutated only through Deposit, Withdraw, or a transfer leg, and never
// goes negative.
type Wallet struct {
	ID              uuid.UUID `json:"id"`
	Address         string    `json:"address"`
	UserID          uuid.UUID `json:"user_id"`
	BalanceSatoshis int64     `json:"balance_satoshis"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewWallet creates a wallet for the given owner with the configured
// initial balance and a fresh globally unique address.
func NewWallet(userID uuid.UUID, initialBalanceSatoshis int64) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:              uuid.New(),
		Address:         uuid.NewString(),
		UserID:          userID,
		BalanceSatoshis: initialBalanceSatoshis,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Deposit credits the wallet. The mutation is in-memory; persisting the
// new balance is the caller's responsibility.
func (w *Wallet) Deposit(amountSatoshis int64) error {
	if amountSatoshis <= 0 {
		return apperror.ErrInvalidAmount()
	}
	w.BalanceSatoshis += amountSatoshis
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// Withdraw debits the wallet. Fails without mutating anything when the
// amount is non-positive or exceeds the current balance.
func (w *Wallet) Withdraw(amountSatoshis int64) error {
	if amountSatoshis <= 0 {
		return apperror.ErrInvalidAmount()
	}
	if amountSatoshis > w.BalanceSatoshis {
		return apperror.ErrInsufficientBalance()
	}
	w.BalanceSatoshis -= amountSatoshis
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// OwnedBy reports whether the wallet belongs to the given user.
func (w *Wallet) OwnedBy(userID uuid.UUID) bool {
	return w.UserID == userID
}
