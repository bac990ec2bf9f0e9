package monitor

import (
	"context"
	"testing"
	"time"

	"poolmanager/core"
	"poolmanager/service/asset"
	"poolmanager/service/oracle"
	"poolmanager/service/pool"
	"poolmanager/service/vault"
	"poolmanager/store/memory"

	"github.com/facebookgo/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	ctx := context.Background()

	c := clock.NewMock()
	c.Add(time.Unix(1_700_000_000, 0).Sub(c.Now()))

	v := vault.New(vault.Config{
		CollateralAsset: "btc",
		LockedAsset:     "fbtc",
		LoanAsset:       "usdt",
		Custody:         "custody",
		Pool:            "pool",
		Ledger:          "ledger",
		Seized:          "seized",
	})

	price := oracle.NewStatic(decimal.New(60000, 8), 8)
	store := memory.New()
	roles := &core.Config{Admins: []string{"admin"}}
	assets := asset.New(core.Assets{Decimals: map[string]uint8{"btc": 8, "usdt": 6}})
	svc := pool.New(pool.Config{Ledger: "ledger", Clock: c}, store, v, v, price, assets, roles)

	require.Nil(t, svc.SetPoolConfig(ctx, "admin", &core.PoolConfig{
		LiquidationThreshold: 8000,
		PoolInterestRate:     500,
		ProtocolInterestRate: 100,
		LoanToValue:          5000,
		CollateralAsset:      "btc",
		LoanAsset:            "usdt",
		LoanVault:            "loan-vault",
		FeeVault:             "fee-vault",
	}))

	open := func(user string, btc, usdt int64) {
		_, err := svc.CreatePool(ctx, "admin", user)
		require.Nil(t, err)
		require.Nil(t, v.Deposit(ctx, "btc", user, decimal.New(btc, 0)))
		_, err = svc.Supply(ctx, user, decimal.New(btc, 0))
		require.Nil(t, err)
		if usdt > 0 {
			_, err = svc.Borrow(ctx, user, decimal.New(usdt, 0))
			require.Nil(t, err)
		}
	}

	open("alice", 1e8, 30000e6)
	open("bob", 2e8, 10000e6)
	open("carol", 1e8, 0)

	price.Set(decimal.New(30000, 8))

	checkpoint := MemoryCheckpoint()
	m := New(Config{Batch: 2}, svc, store, checkpoint)

	flagged, err := m.Scan(ctx)
	require.Nil(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "alice", flagged[0].UserID)
	assert.True(t, flagged[0].Liquidatable)

	cursor, _ := checkpoint.Load(ctx)
	assert.Equal(t, "bob", cursor)

	flagged, err = m.Scan(ctx)
	require.Nil(t, err)
	assert.Empty(t, flagged)

	cursor, _ = checkpoint.Load(ctx)
	assert.Equal(t, "", cursor)

	_, err = svc.Liquidate(ctx, "admin", "alice", decimal.New(1e8, 0), decimal.New(30000e6, 0))
	require.Nil(t, err)

	flagged, err = m.Scan(ctx)
	require.Nil(t, err)
	assert.Empty(t, flagged)
}

func TestScanEmpty(t *testing.T) {
	m := New(Config{}, nil, memory.New(), MemoryCheckpoint())

	_, err := m.Scan(context.Background())
	assert.EqualError(t, err, "EOF")
}
