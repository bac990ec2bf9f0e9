package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"poolmanager/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPOracle(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"price":"6000000000000","decimals":8}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	o := New(core.PriceOracle{EndPoint: srv.URL, CacheTTL: 60})

	price, err := o.GetPrice(ctx)
	require.Nil(t, err)
	assert.Equal(t, "6000000000000", price.String())

	decimals, err := o.GetPriceDecimals(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint8(8), decimals)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "ticker is cached")
}

func TestHTTPOracleZeroPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"price":"0","decimals":8}`))
	}))
	defer srv.Close()

	_, err := New(core.PriceOracle{EndPoint: srv.URL}).GetPrice(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidPrice)
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	o := NewStatic(decimal.New(60000, 8), 8)

	price, err := o.GetPrice(ctx)
	require.Nil(t, err)
	assert.Equal(t, decimal.New(60000, 8).String(), price.String())

	o.Set(decimal.Zero)
	_, err = o.GetPrice(ctx)
	assert.ErrorIs(t, err, core.ErrInvalidPrice)
}
