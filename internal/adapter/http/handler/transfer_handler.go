package handler

import (
	"bitcoin-wallet-ledger/internal/adapter/http/dto"
	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/pkg/apperror"
	"bitcoin-wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles transfer endpoints.
type TransferHandler struct {
	ledgerSvc ports.LedgerService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledgerSvc ports.LedgerService) *TransferHandler {
	return &TransferHandler{ledgerSvc: ledgerSvc}
}

// Transfer handles POST /api/v1/transfers.
func (h *TransferHandler) Transfer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		UserID:         userID,
		FromAddress:    req.FromAddress,
		ToAddress:      req.ToAddress,
		AmountSatoshis: req.AmountSatoshis,
		Internal:       req.Internal,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(txn))
}

// UserTransactions handles GET /api/v1/transactions.
func (h *TransferHandler) UserTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	txns, err := h.ledgerSvc.UserTransactions(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransactions(txns))
}
