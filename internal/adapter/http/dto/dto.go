package dto

import (
	"bitcoin-wallet-ledger/internal/core/domain"
	"bitcoin-wallet-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

// DepositRequest is the request body for a wallet deposit.
type DepositRequest struct {
	AmountSatoshis int64 `json:"amount_satoshis" binding:"required,gt=0"`
}

// WithdrawRequest is the request body for a wallet withdrawal.
type WithdrawRequest struct {
	AmountSatoshis int64 `json:"amount_satoshis" binding:"required,gt=0"`
}

// TransferRequest is the request body for a wallet-to-wallet transfer.
type TransferRequest struct {
	FromAddress    string `json:"from_address" binding:"required"`
	ToAddress      string `json:"to_address" binding:"required"`
	AmountSatoshis int64  `json:"amount_satoshis" binding:"required,gt=0"`
	Internal       bool   `json:"internal"`
}

// RegisterResponse is the response body for successful user registration.
// The API key appears here and nowhere else.
type RegisterResponse struct {
	UserID string `json:"user_id"`
	APIKey string `json:"api_key"`
}

// WalletResponse is the response body for wallet state.
type WalletResponse struct {
	ID              string `json:"id"`
	Address         string `json:"address"`
	BalanceSatoshis int64  `json:"balance_satoshis"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// TransactionResponse is the response body for a completed transfer.
type TransactionResponse struct {
	ID             string `json:"id"`
	FromAddress    string `json:"from_address"`
	ToAddress      string `json:"to_address"`
	AmountSatoshis int64  `json:"amount_satoshis"`
	FeeSatoshis    int64  `json:"fee_satoshis"`
	Internal       bool   `json:"internal"`
	CreatedAt      string `json:"created_at"`
}

// StatisticsResponse is the response body for platform statistics.
type StatisticsResponse struct {
	TotalTransactions int64            `json:"total_transactions"`
	ProfitSatoshis    int64            `json:"profit_satoshis"`
	ProfitUSD         *decimal.Decimal `json:"profit_usd,omitempty"`
}

// FromWallet maps a domain wallet to its response shape.
func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:              w.ID.String(),
		Address:         w.Address,
		BalanceSatoshis: w.BalanceSatoshis,
		CreatedAt:       w.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       w.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// FromWallets maps a wallet slice to its response shape.
func FromWallets(wallets []domain.Wallet) []WalletResponse {
	out := make([]WalletResponse, 0, len(wallets))
	for i := range wallets {
		out = append(out, FromWallet(&wallets[i]))
	}
	return out
}

// FromTransaction maps a domain transaction to its response shape.
func FromTransaction(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             txn.ID.String(),
		FromAddress:    txn.FromAddress,
		ToAddress:      txn.ToAddress,
		AmountSatoshis: txn.AmountSatoshis,
		FeeSatoshis:    txn.FeeSatoshis,
		Internal:       txn.Internal,
		CreatedAt:      txn.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// FromTransactions maps a transaction slice to its response shape.
func FromTransactions(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, FromTransaction(&txns[i]))
	}
	return out
}

// FromStatistics maps platform statistics to their response shape.
// ProfitUSD is omitted entirely when no exchange rate was available.
func FromStatistics(s *ports.PlatformStatistics) StatisticsResponse {
	resp := StatisticsResponse{
		TotalTransactions: s.TotalTransactions,
		ProfitSatoshis:    s.ProfitSatoshis,
	}
	if s.USDRateAvailable {
		usd := s.ProfitUSD
		resp.ProfitUSD = &usd
	}
	return resp
}
