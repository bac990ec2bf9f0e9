package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"poolmanager/core"
	"poolmanager/handler/auth"
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

const secret = "rest-secret"

type apiResponse struct {
	Data json.RawMessage `json:"data"`
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
}

type testServer struct {
	*httptest.Server
	vault *vault.Vault
}

func newTestServer(t *testing.T) *testServer {
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
	require.Nil(t, v.Deposit(ctx, "usdt", "loan-vault", decimal.New(1, 18)))

	roles := &core.Config{Admins: []string{"admin"}}
	assets := asset.New(core.Assets{Decimals: map[string]uint8{"btc": 8, "usdt": 6}})
	svc := pool.New(pool.Config{Ledger: "ledger", Clock: c}, memory.New(), v, v, oracle.NewStatic(decimal.New(60000, 8), 8), assets, roles)

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

	h := auth.HandleAuthentication(secret)(Handle(svc))
	srv := &testServer{Server: httptest.NewServer(h), vault: v}
	t.Cleanup(srv.Close)
	return srv
}

func (s *testServer) do(t *testing.T, method, path, caller, body string) (int, apiResponse) {
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.Nil(t, err)

	if caller != "" {
		token, err := auth.IssueToken(secret, caller, time.Minute)
		require.Nil(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.Nil(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestLedgerRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	status, _ := s.do(t, http.MethodPost, "/pools", "", `{"user_id":"alice"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp := s.do(t, http.MethodPost, "/pools", "alice", `{"user_id":"alice"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, int(core.ErrUnauthorized), resp.Code)

	status, _ = s.do(t, http.MethodPost, "/pools", "admin", `{"user_id":"alice"}`)
	require.Equal(t, http.StatusOK, status)

	require.Nil(t, s.vault.Deposit(ctx, "btc", "alice", decimal.New(1, 8)))

	status, resp = s.do(t, http.MethodPost, "/supply", "alice", `{"amount":"100000000"}`)
	require.Equal(t, http.StatusOK, status)

	var reserve core.UserReserve
	require.Nil(t, json.Unmarshal(resp.Data, &reserve))
	assert.Equal(t, "100000000", reserve.Collateral.String())

	status, resp = s.do(t, http.MethodPost, "/borrow", "alice", `{"amount":"40000000000"}`)
	assert.Equal(t, http.StatusPreconditionFailed, status)
	assert.Equal(t, int(core.ErrExceedsLoanToValue), resp.Code)

	status, _ = s.do(t, http.MethodPost, "/borrow", "alice", `{"amount":"20000000000"}`)
	require.Equal(t, http.StatusOK, status)

	status, resp = s.do(t, http.MethodGet, "/users/alice/reserve", "", "")
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, json.Unmarshal(resp.Data, &reserve))
	assert.Equal(t, "20000000000", reserve.Debt.String())
	assert.Equal(t, "20000000000", reserve.ClaimableLoanAsset.String())

	status, resp = s.do(t, http.MethodGet, "/users/alice/limits", "", "")
	require.Equal(t, http.StatusOK, status)

	var limits core.Limits
	require.Nil(t, json.Unmarshal(resp.Data, &limits))
	assert.Equal(t, "10000000000", limits.MaxBorrowable.String())
	assert.False(t, limits.Liquidatable)

	status, resp = s.do(t, http.MethodGet, "/users/alice/events?limit=10", "", "")
	require.Equal(t, http.StatusOK, status)

	var events []*core.Event
	require.Nil(t, json.Unmarshal(resp.Data, &events))
	require.Len(t, events, 3)
	assert.Equal(t, core.EventBorrowed, events[2].Action)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.do(t, http.MethodPost, "/supply", "alice", `{"amount":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotZero(t, resp.Code)

	status, _ = s.do(t, http.MethodPost, "/supply", "alice", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = s.do(t, http.MethodPost, "/supply", "alice", `{"amount":"10"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, int(core.ErrPoolNotInitialized), resp.Code)

	status, _ = s.do(t, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestConfigRoutes(t *testing.T) {
	s := newTestServer(t)

	status, resp := s.do(t, http.MethodGet, "/config", "", "")
	require.Equal(t, http.StatusOK, status)

	var cfg core.PoolConfig
	require.Nil(t, json.Unmarshal(resp.Data, &cfg))
	assert.EqualValues(t, 8000, cfg.LiquidationThreshold)

	body := `{"liquidation_threshold":7000,"pool_interest_rate":400,"protocol_interest_rate":100,"loan_to_value":6000,"collateral_asset":"btc","loan_asset":"usdt","loan_vault":"loan-vault","fee_vault":"fee-vault"}`
	status, _ = s.do(t, http.MethodPut, "/config", "bob", body)
	assert.Equal(t, http.StatusForbidden, status)

	status, resp = s.do(t, http.MethodPut, "/config", "admin", body)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, json.Unmarshal(resp.Data, &cfg))
	assert.EqualValues(t, 7000, cfg.LiquidationThreshold)

	status, _ = s.do(t, http.MethodPost, "/pools", "admin", `{"user_id":"carol"}`)
	require.Equal(t, http.StatusOK, status)

	status, resp = s.do(t, http.MethodPut, "/users/carol/config", "admin", `{"pool_interest_rate":100,"protocol_interest_rate":0,"loan_to_value":5000,"liquidation_threshold":9000}`)
	require.Equal(t, http.StatusOK, status)

	var userCfg core.UserPoolConfig
	require.Nil(t, json.Unmarshal(resp.Data, &userCfg))
	assert.EqualValues(t, 9000, userCfg.LiquidationThreshold)
	assert.True(t, userCfg.Initialized)

	status, resp = s.do(t, http.MethodGet, "/profit", "", "")
	require.Equal(t, http.StatusOK, status)

	status, resp = s.do(t, http.MethodPost, "/profit/claim", "admin", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"amount":"0"}`, string(resp.Data))
}
