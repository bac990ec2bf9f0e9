package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"poolmanager/handler/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	token, err := IssueToken("secret", "alice", time.Hour)
	require.NoError(t, err)

	caller, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "alice", caller)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	expired, err := IssueToken("secret", "alice", -time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.Error(t, err)

	_, err = IssueToken("", "alice", time.Hour)
	assert.Error(t, err)
}

func TestHandleAuthentication(t *testing.T) {
	var got string
	h := HandleAuthentication("secret")(LoginRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = request.NewContext(r.Context()).GetCaller()
	})))

	token, err := IssueToken("secret", "bob", 0)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/supply", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", got)

	got = ""
	r = httptest.NewRequest(http.MethodPost, "/supply", nil)
	r.Header.Set("Authorization", "Bearer bad")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, got)
}
