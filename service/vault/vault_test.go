package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVault() *Vault {
	return New(Config{
		CollateralAsset: "btc",
		LockedAsset:     "fbtc",
		LoanAsset:       "usdt",
		Custody:         "custody",
		Pool:            "pool",
		Ledger:          "ledger",
		Seized:          "seized",
	})
}

func TestLockAndRedeem(t *testing.T) {
	ctx := context.Background()
	v := newVault()
	require.Nil(t, v.Deposit(ctx, "btc", "alice", decimal.New(100, 0)))

	minted, err := v.LockAndMint(ctx, "alice", decimal.New(60, 0))
	require.Nil(t, err)
	assert.Equal(t, "60", minted.String())
	assert.Equal(t, "40", v.Balance("btc", "alice").String())
	assert.Equal(t, "60", v.Balance("btc", "custody").String())
	assert.Equal(t, "60", v.Balance("fbtc", "pool").String())

	_, err = v.LockAndMint(ctx, "alice", decimal.New(41, 0))
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.Equal(t, "40", v.Balance("btc", "alice").String())

	require.Nil(t, v.ConfirmRedeem(ctx, "alice", decimal.New(10, 0)))
	assert.Equal(t, "50", v.Balance("btc", "alice").String())
	assert.Equal(t, "50", v.Balance("fbtc", "pool").String())

	require.Nil(t, v.Burn(ctx, decimal.New(20, 0)))
	assert.Equal(t, "30", v.Balance("fbtc", "pool").String())
	assert.Equal(t, "20", v.Balance("btc", "seized").String())
	assert.Equal(t, "30", v.Balance("btc", "custody").String())

	assert.True(t, errors.Is(v.Burn(ctx, decimal.New(31, 0)), ErrInsufficientBalance))
}

func TestLoanTransfers(t *testing.T) {
	ctx := context.Background()
	v := newVault()
	require.Nil(t, v.Deposit(ctx, "usdt", "loan-vault", decimal.New(1000, 0)))

	require.Nil(t, v.TransferFrom(ctx, "loan-vault", "alice", decimal.New(300, 0)))
	require.Nil(t, v.TransferFrom(ctx, "alice", "ledger", decimal.New(100, 0)))
	require.Nil(t, v.Transfer(ctx, "fee-vault", decimal.New(70, 0)))

	balance, err := v.BalanceOf(ctx, "ledger")
	require.Nil(t, err)
	assert.Equal(t, "30", balance.String())
	assert.Equal(t, "70", v.Balance("usdt", "fee-vault").String())

	assert.True(t, errors.Is(v.Transfer(ctx, "x", decimal.New(31, 0)), ErrInsufficientBalance))
	assert.Equal(t, ErrInvalidAmount, v.TransferFrom(ctx, "alice", "bob", decimal.New(-1, 0)))
	assert.Nil(t, v.TransferFrom(ctx, "nobody", "bob", decimal.Zero))
}
