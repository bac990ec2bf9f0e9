package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"poolmanager/core"
	"poolmanager/handler"
	"poolmanager/handler/auth"
	"poolmanager/pkg/resthttp"
	"poolmanager/service/asset"
	"poolmanager/service/oracle"
	"poolmanager/service/pool"
	"poolmanager/service/vault"
	"poolmanager/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "remote-secret"

func newServer(t *testing.T) (*httptest.Server, *vault.Vault) {
	ctx := context.Background()

	v := vault.New(vault.Config{
		CollateralAsset: "btc",
		LockedAsset:     "fbtc",
		LoanAsset:       "usdt",
		Custody:         "custody",
		Pool:            "pool",
		Ledger:          "ledger",
		Seized:          "seized",
	})

	cfg := &core.Config{
		App:         core.App{JWTSecret: secret, Ledger: "ledger"},
		Admins:      []string{"admin"},
		Liquidators: []string{"liquidator"},
	}

	assets := asset.New(core.Assets{Decimals: map[string]uint8{"btc": 8, "usdt": 6}})
	svc := pool.New(pool.Config{Ledger: "ledger"}, memory.New(), v, v, oracle.NewStatic(decimal.New(60000, 8), 8), assets, cfg)

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

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", handler.New(cfg, svc).HandleRestAPI()))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, v
}

func client(t *testing.T, endpoint, caller string) *Client {
	token, err := auth.IssueToken(secret, caller, time.Minute)
	require.Nil(t, err)
	return New(endpoint, token)
}

func TestAdminCalls(t *testing.T) {
	srv, v := newServer(t)
	ctx := context.Background()
	c := client(t, srv.URL, "admin")

	reserve, err := c.CreatePool(ctx, "alice")
	require.Nil(t, err)
	assert.Equal(t, "alice", reserve.UserID)

	poolConfig, err := c.PoolConfig(ctx)
	require.Nil(t, err)
	assert.EqualValues(t, 5000, poolConfig.LoanToValue)

	poolConfig.LoanToValue = 6000
	updated, err := c.SetPoolConfig(ctx, poolConfig)
	require.Nil(t, err)
	assert.EqualValues(t, 6000, updated.LoanToValue)
	assert.Equal(t, "fee-vault", updated.FeeVault)

	userConfig, err := c.UserPoolConfig(ctx, "alice")
	require.Nil(t, err)
	assert.EqualValues(t, 5000, userConfig.LoanToValue, "existing pools keep their snapshot")

	userConfig.LiquidationThreshold = 8500
	userUpdated, err := c.SetUserPoolConfig(ctx, "alice", userConfig)
	require.Nil(t, err)
	assert.EqualValues(t, 8500, userUpdated.LiquidationThreshold)

	require.Nil(t, v.Deposit(ctx, "usdt", "ledger", decimal.New(42, 0)))

	amount, err := c.ClaimProtocolEarnings(ctx)
	require.Nil(t, err)
	assert.Equal(t, "42", amount.String())
	assert.Equal(t, "42", v.Balance("usdt", "admin").String())
}

func TestLiquidateCall(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()

	_, err := client(t, srv.URL, "admin").CreatePool(ctx, "alice")
	require.Nil(t, err)

	// nothing supplied yet, the write down underflows
	_, err = client(t, srv.URL, "liquidator").Liquidate(ctx, "alice", decimal.New(1, 0), decimal.Zero)
	var e *resthttp.Error
	require.True(t, errors.As(err, &e), err)
	assert.Equal(t, int(core.ErrArithmeticOverflow), e.Code)
}

func TestRejectedCaller(t *testing.T) {
	srv, _ := newServer(t)

	_, err := client(t, srv.URL, "alice").CreatePool(context.Background(), "bob")

	var e *resthttp.Error
	require.True(t, errors.As(err, &e), err)
	assert.Equal(t, http.StatusForbidden, e.Status)
	assert.Equal(t, int(core.ErrUnauthorized), e.Code)
}
