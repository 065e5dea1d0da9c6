package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer_External(t *testing.T) {
	from := NewWallet(uuid.New(), 200_000)
	to := NewWallet(uuid.New(), 50_000)

	txn, err := Transfer(from, to, 100_000, false)
	require.NoError(t, err)

	assert.Equal(t, int64(100_000), txn.AmountSatoshis)
	assert.Equal(t, int64(1500), txn.FeeSatoshis)
	assert.Equal(t, from.Address, txn.FromAddress)
	assert.Equal(t, to.Address, txn.ToAddress)

	// Conservation: sender loses the full amount, receiver gains net of fee.
	assert.Equal(t, int64(100_000), txn.TotalDeducted())
	assert.Equal(t, int64(200_000-100_000), from.BalanceSatoshis)
	assert.Equal(t, int64(50_000+98_500), to.BalanceSatoshis)
}

func TestTransfer_Internal_NoFee(t *testing.T) {
	from := NewWallet(uuid.New(), 200_000)
	to := NewWallet(uuid.New(), 0)

	txn, err := Transfer(from, to, 100_000, true)
	require.NoError(t, err)

	assert.Zero(t, txn.FeeSatoshis)
	assert.Equal(t, int64(100_000), from.BalanceSatoshis)
	assert.Equal(t, int64(100_000), to.BalanceSatoshis)
}

func TestTransfer_InsufficientBalance_NothingMutated(t *testing.T) {
	from := NewWallet(uuid.New(), 1000)
	to := NewWallet(uuid.New(), 500)

	txn, err := Transfer(from, to, 2000, false)
	assert.Nil(t, txn)
	assertCode(t, err, "WAL_002")

	assert.Equal(t, int64(1000), from.BalanceSatoshis)
	assert.Equal(t, int64(500), to.BalanceSatoshis)
}

func TestTransfer_SameWallet_NothingMutated(t *testing.T) {
	w := NewWallet(uuid.New(), 10_000)

	txn, err := Transfer(w, w, 1000, false)
	assert.Nil(t, txn)
	assertCode(t, err, "TXN_002")
	assert.Equal(t, int64(10_000), w.BalanceSatoshis)
}

func TestTransfer_InvalidAmount_NothingMutated(t *testing.T) {
	from := NewWallet(uuid.New(), 10_000)
	to := NewWallet(uuid.New(), 10_000)

	for _, amount := range []int64{0, -500} {
		txn, err := Transfer(from, to, amount, false)
		assert.Nil(t, txn)
		assertCode(t, err, "WAL_001")
	}
	assert.Equal(t, int64(10_000), from.BalanceSatoshis)
	assert.Equal(t, int64(10_000), to.BalanceSatoshis)
}

func TestTransfer_ExactBalance(t *testing.T) {
	from := NewWallet(uuid.New(), 100_000)
	to := NewWallet(uuid.New(), 0)

	txn, err := Transfer(from, to, 100_000, false)
	require.NoError(t, err)

	assert.Zero(t, from.BalanceSatoshis)
	assert.Equal(t, txn.RecipientAmount(), to.BalanceSatoshis)
}

func TestTransfer_MinimumAmount(t *testing.T) {
	from := NewWallet(uuid.New(), 10)
	to := NewWallet(uuid.New(), 0)

	// 1 satoshi external: fee rounds to 0, recipient still gets something.
	txn, err := Transfer(from, to, 1, false)
	require.NoError(t, err)
	assert.Zero(t, txn.FeeSatoshis)
	assert.Equal(t, int64(1), to.BalanceSatoshis)
	assert.Equal(t, int64(9), from.BalanceSatoshis)
}
