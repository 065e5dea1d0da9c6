package handler

import (
	"bitcoin-wallet-ledger/internal/adapter/http/dto"
	"bitcoin-wallet-ledger/internal/adapter/http/middleware"
	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/pkg/apperror"
	"bitcoin-wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	ledgerSvc ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc}
}

// currentUserID extracts the authenticated user id set by APIKeyAuth.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidAPIKey())
		return uuid.Nil, false
	}
	return v.(uuid.UUID), true
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.ledgerSvc.CreateWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"id":               result.WalletID.String(),
		"address":          result.Address,
		"balance_satoshis": result.BalanceSatoshis,
	})
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wallets, err := h.ledgerSvc.ListWallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromWallets(wallets))
}

// Get handles GET /api/v1/wallets/:address.
func (h *WalletHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	wallet, err := h.ledgerSvc.GetWallet(c.Request.Context(), userID, c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromWallet(wallet))
}

// Deposit handles POST /api/v1/wallets/:address/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, err := h.ledgerSvc.Deposit(c.Request.Context(), userID, c.Param("address"), req.AmountSatoshis)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromWallet(wallet))
}

// Withdraw handles POST /api/v1/wallets/:address/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, err := h.ledgerSvc.Withdraw(c.Request.Context(), userID, c.Param("address"), req.AmountSatoshis)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromWallet(wallet))
}

// Transactions handles GET /api/v1/wallets/:address/transactions.
func (h *WalletHandler) Transactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	txns, err := h.ledgerSvc.WalletTransactions(c.Request.Context(), userID, c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransactions(txns))
}
