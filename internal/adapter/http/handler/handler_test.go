package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bitcoin-wallet-ledger/internal/adapter/http/dto"
	"bitcoin-wallet-ledger/internal/adapter/http/middleware"
	"bitcoin-wallet-ledger/internal/core/domain"
	"bitcoin-wallet-ledger/internal/core/ports"
	"bitcoin-wallet-ledger/internal/core/ports/mocks"
	"bitcoin-wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newAuthedContext builds a test context with the user already resolved,
// the way APIKeyAuth leaves it.
func newAuthedContext(w *httptest.ResponseRecorder, userID uuid.UUID) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.CtxUserID, userID)
	return c
}

// --- User Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUser := mocks.NewMockUserService(ctrl)
	h := NewUserHandler(mockUser)

	userID := uuid.New()
	mockUser.EXPECT().Register(gomock.Any()).Return(&ports.RegistrationResult{
		UserID: userID,
		APIKey: "abcdefghijklmnopqrstuvwxyz0123456789_-ABCDE",
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, userID.String(), data["user_id"])
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz0123456789_-ABCDE", data["api_key"])
}

func TestRegister_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUser := mocks.NewMockUserService(ctrl)
	h := NewUserHandler(mockUser)

	mockUser.EXPECT().Register(gomock.Any()).
		Return(nil, apperror.InternalError(errors.New("db down")))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)

	h.Register(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- Wallet Handler Tests ---

func TestWalletCreate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	userID := uuid.New()
	walletID := uuid.New()
	addr := uuid.NewString()
	mockLedger.EXPECT().CreateWallet(gomock.Any(), userID).Return(&ports.CreateWalletResult{
		WalletID:        walletID,
		Address:         addr,
		BalanceSatoshis: 100_000_000,
	}, nil)

	w := httptest.NewRecorder()
	c := newAuthedContext(w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets", nil)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, addr, data["address"])
	assert.Equal(t, float64(100_000_000), data["balance_satoshis"])
}

func TestWalletCreate_LimitExceeded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().CreateWallet(gomock.Any(), userID).
		Return(nil, apperror.ErrWalletLimitExceeded(3))

	w := httptest.NewRecorder()
	c := newAuthedContext(w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets", nil)

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "WAL_005", resp["error_code"])
}

func TestWalletDeposit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	userID := uuid.New()
	addr := uuid.NewString()
	mockLedger.EXPECT().Deposit(gomock.Any(), userID, addr, int64(5_000)).Return(&domain.Wallet{
		ID:              uuid.New(),
		Address:         addr,
		UserID:          userID,
		BalanceSatoshis: 105_000,
	}, nil)

	body, _ := json.Marshal(dto.DepositRequest{AmountSatoshis: 5_000})

	w := httptest.NewRecorder()
	c := newAuthedContext(w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+addr+"/deposit", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "address", Value: addr}}

	h.Deposit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(105_000), data["balance_satoshis"])
}

func TestWalletDeposit_NegativeAmountRejectedByBinding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	addr := uuid.NewString()
	w := httptest.NewRecorder()
	c := newAuthedContext(w, uuid.New())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+addr+"/deposit",
		bytes.NewReader([]byte(`{"amount_satoshis":-5}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "address", Value: addr}}

	h.Deposit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletWithdraw_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	userID := uuid.New()
	addr := uuid.NewString()
	mockLedger.EXPECT().Withdraw(gomock.Any(), userID, addr, int64(999_999)).
		Return(nil, apperror.ErrInsufficientBalance())

	body, _ := json.Marshal(dto.WithdrawRequest{AmountSatoshis: 999_999})

	w := httptest.NewRecorder()
	c := newAuthedContext(w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets/"+addr+"/withdraw", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "address", Value: addr}}

	h.Withdraw(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "WAL_002", resp["error_code"])
}

func TestWalletGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().GetWallet(gomock.Any(), userID, "missing").
		Return(nil, apperror.ErrWalletNotFound())

	w := httptest.NewRecorder()
	c := newAuthedContext(w, userID)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets/missing", nil)
	c.Params = gin.Params{{Key: "address", Value: "missing"}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Transfer Handler Tests ---

func TestTransfer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransferHandler(mockLedger)

	userID := uuid.New()
	fromAddr, toAddr := uuid.NewString(), uuid.NewString()
	txnID := uuid.New()
	mockLedger.EXPECT().Transfer(gomock.Any(), ports.TransferRequest{
		UserID:         userID,
		FromAddress:    fromAddr,
		ToAddress:      toAddr,
		AmountSatoshis: 100_000,
	}).Return(&domain.Transaction{
		ID:             txnID,
		FromAddress:    fromAddr,
		ToAddress:      toAddr,
		AmountSatoshis: 100_000,
		FeeSatoshis:    1_500,
	}, nil)

	body, _ := json.Marshal(dto.TransferRequest{
		FromAddress:    fromAddr,
		ToAddress:      toAddr,
		AmountSatoshis: 100_000,
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Transfer(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, txnID.String(), data["id"])
	assert.Equal(t, float64(1_500), data["fee_satoshis"])
}

func TestTransfer_ContentionIsRetryable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransferHandler(mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrContention(errors.New("lock timeout")))

	body, _ := json.Marshal(dto.TransferRequest{
		FromAddress:    uuid.NewString(),
		ToAddress:      uuid.NewString(),
		AmountSatoshis: 1_000,
	})

	w := httptest.NewRecorder()
	c := newAuthedContext(w, userID)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Transfer(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SYS_002", resp["error_code"])
	assert.Equal(t, true, resp["retryable"])
}

func TestTransfer_MissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewTransferHandler(mockLedger)

	w := httptest.NewRecorder()
	c := newAuthedContext(w, uuid.New())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/transfers", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Statistics Handler Tests ---

func TestStatistics_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStats := mocks.NewMockStatisticsService(ctrl)
	h := NewStatsHandler(mockStats)

	mockStats.EXPECT().PlatformStatistics(gomock.Any()).Return(&ports.PlatformStatistics{
		TotalTransactions: 10,
		ProfitSatoshis:    15_000,
		ProfitUSD:         decimal.NewFromFloat(9.6),
		USDRateAvailable:  true,
	}, nil)

	w := httptest.NewRecorder()
	c := newAuthedContext(w, uuid.New())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil)

	h.Statistics(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["total_transactions"])
	assert.Equal(t, float64(15_000), data["profit_satoshis"])
	assert.Contains(t, data, "profit_usd")
}

func TestStatistics_NoRateOmitsUSD(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStats := mocks.NewMockStatisticsService(ctrl)
	h := NewStatsHandler(mockStats)

	mockStats.EXPECT().PlatformStatistics(gomock.Any()).Return(&ports.PlatformStatistics{
		TotalTransactions: 10,
		ProfitSatoshis:    15_000,
	}, nil)

	w := httptest.NewRecorder()
	c := newAuthedContext(w, uuid.New())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil)

	h.Statistics(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.NotContains(t, data, "profit_usd")
}
