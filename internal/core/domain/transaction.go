package domain

import (
	"time"

	"bitcoin-wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
)

// Transaction is the immutable record of one completed transfer. Wallets
// are referenced by address only, never by an embedded object, so the
// record can outlive any in-memory wallet without an ownership cycle.
type Transaction struct {
	ID             uuid.UUID `json:"id"`
	FromAddress    string    `json:"from_address"`
	ToAddress      string    `json:"to_address"`
	AmountSatoshis int64     `json:"amount_satoshis"`
	FeeSatoshis    int64     `json:"fee_satoshis"`
	Internal       bool      `json:"internal"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewTransaction validates the transfer parameters and builds the record,
// computing the fee via ComputeFee. No state is touched on failure.
func NewTransaction(fromAddress, toAddress string, amountSatoshis int64, internal bool) (*Transaction, error) {
	if amountSatoshis <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if fromAddress == "" || toAddress == "" {
		return nil, apperror.ErrInvalidAddress()
	}
	if fromAddress == toAddress {
		return nil, apperror.ErrSameWalletTransfer()
	}

	return &Transaction{
		ID:             uuid.New(),
		FromAddress:    fromAddress,
		ToAddress:      toAddress,
		AmountSatoshis: amountSatoshis,
		FeeSatoshis:    ComputeFee(amountSatoshis, internal),
		Internal:       internal,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// TotalDeducted is the amount removed from the sender's wallet.
func (t *Transaction) TotalDeducted() int64 {
	return t.AmountSatoshis
}

// RecipientAmount is the amount credited to the receiving wallet after
// the platform fee.
func (t *Transaction) RecipientAmount() int64 {
	return t.AmountSatoshis - t.FeeSatoshis
}
