package iam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iamopts "github.com/kart-io/askwx/pkg/options/iam"
)

func newTestServer(t *testing.T, calls *int32, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, GrantTypeAPIKey, r.PostForm.Get("grant_type"))
		assert.Equal(t, "test-key", r.PostForm.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func newTestClient(url string) *Client {
	opts := iamopts.NewOptions()
	opts.APIKey = "test-key"
	opts.TokenURL = url
	opts.Timeout = 5 * time.Second
	return NewClient(opts)
}

func TestToken(t *testing.T) {
	var calls int32
	exp := time.Now().Add(time.Hour).Unix()
	server := newTestServer(t, &calls,
		`{"access_token":"abc","refresh_token":"r","token_type":"Bearer","expires_in":3600,"expiration":`+strconv.FormatInt(exp, 10)+`}`,
		http.StatusOK)
	defer server.Close()

	tok, err := newTestClient(server.URL).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
	assert.Equal(t, exp, tok.Expiry.Unix())
	assert.True(t, tok.Valid())
}

func TestTokenFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad credentials", `{"errorCode":"BXNIM0415E","errorMessage":"Provided API key could not be found."}`, http.StatusBadRequest},
		{"empty token", `{"token_type":"Bearer"}`, http.StatusOK},
		{"server error", `oops`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := newTestServer(t, &calls, tt.body, tt.status)
			defer server.Close()

			_, err := newTestClient(server.URL).Token(context.Background())
			assert.Error(t, err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestTokenWithoutKey(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	c.apiKey = ""
	_, err := c.Token(context.Background())
	assert.Error(t, err)
}

func TestCachedProviderReusesToken(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, `{"access_token":"abc","token_type":"Bearer","expires_in":3600}`, http.StatusOK)
	defer server.Close()

	p := NewCachedProvider(newTestClient(server.URL))
	for i := 0; i < 3; i++ {
		tok, err := p.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "abc", tok.AccessToken)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCachedProviderRefreshesExpiredToken(t *testing.T) {
	var calls int32
	// 1s lies inside oauth2's expiry delta, so the token is stale on arrival.
	server := newTestServer(t, &calls, `{"access_token":"abc","expires_in":1}`, http.StatusOK)
	defer server.Close()

	p := NewCachedProvider(newTestClient(server.URL))
	for i := 0; i < 2; i++ {
		_, err := p.Token(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCachedProviderRefreshUsesCallerContext(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, `{"access_token":"abc","expires_in":3600}`, http.StatusOK)
	defer server.Close()

	p := NewCachedProvider(newTestClient(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Token(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	// 失败不会被缓存，下一次请求用自己的 ctx 重新获取。
	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientFetchesEveryCall(t *testing.T) {
	var calls int32
	server := newTestServer(t, &calls, `{"access_token":"abc","expires_in":3600}`, http.StatusOK)
	defer server.Close()

	c := newTestClient(server.URL)
	for i := 0; i < 2; i++ {
		_, err := c.Token(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
