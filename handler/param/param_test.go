package param

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twitchtv/twirp"
)

type query struct {
	User  string `json:"user"`
	From  int64  `json:"from"`
	Limit int    `json:"limit"`
}

type body struct {
	Amount string `json:"amount" valid:"required"`
}

func TestBindingQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/events?user=alice&from=3&limit=10&other=1", nil)

	var q query
	require.NoError(t, Binding(r, &q))
	assert.Equal(t, query{User: "alice", From: 3, Limit: 10}, q)
}

func TestBindingBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/supply", strings.NewReader(`{"amount":"100"}`))

	var b body
	require.NoError(t, Binding(r, &b))
	assert.Equal(t, "100", b.Amount)

	r = httptest.NewRequest(http.MethodPost, "/supply", strings.NewReader(`{}`))
	var empty body
	err := Binding(r, &empty)
	require.Error(t, err)

	twerr, ok := err.(twirp.Error)
	require.True(t, ok)
	assert.Equal(t, twirp.InvalidArgument, twerr.Code())
}
