package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Retryable  bool   `json:"-"` // Caller may retry the same call (contention only)
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Business Logic (WAL) ----

func ErrInvalidAmount() *AppError {
	return New("WAL_001", "Amount must be a positive number of satoshis", http.StatusBadRequest)
}

func ErrInsufficientBalance() *AppError {
	return New("WAL_002", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrWalletNotFound() *AppError {
	return New("WAL_003", "Wallet not found", http.StatusNotFound)
}

func ErrUnauthorizedAccess() *AppError {
	return New("WAL_004", "Wallet belongs to a different user", http.StatusForbidden)
}

func ErrWalletLimitExceeded(limit int) *AppError {
	return New("WAL_005", fmt.Sprintf("User already owns the maximum of %d wallets", limit), http.StatusConflict)
}

// ---- Transfer Validation (TXN) ----

func ErrInvalidAddress() *AppError {
	return New("TXN_001", "Wallet address cannot be empty", http.StatusBadRequest)
}

func ErrSameWalletTransfer() *AppError {
	return New("TXN_002", "Cannot transfer between a wallet and itself", http.StatusBadRequest)
}

func ErrTransactionNotFound() *AppError {
	return New("TXN_003", "Transaction not found", http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidAPIKey() *AppError {
	return New("AUTH_001", "Invalid API key", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrPersistence wraps a storage-layer failure. It is surfaced to the
// caller unchanged and never retried by the core.
func ErrPersistence(err error) *AppError {
	return Wrap("SYS_001", "Internal storage error", http.StatusInternalServerError, err)
}

// ErrContention reports a lock-acquisition timeout. This is the only
// retryable condition in the taxonomy.
func ErrContention(err error) *AppError {
	e := Wrap("SYS_002", "Operation timed out waiting for wallet lock, retry later", http.StatusServiceUnavailable, err)
	e.Retryable = true
	return e
}

// ErrExchangeRateUnavailable reports that no BTC/USD rate could be served.
func ErrExchangeRateUnavailable(err error) *AppError {
	return Wrap("SYS_003", "Exchange rate unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a WAL_001-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("WAL_001", message, http.StatusBadRequest)
}
