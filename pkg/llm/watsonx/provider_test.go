package watsonx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/askwx/pkg/llm"
	"github.com/kart-io/askwx/pkg/utils/json"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name      string
		config    map[string]any
		wantError bool
	}{
		{"valid config", map[string]any{"project_id": "p"}, false},
		{"custom config", map[string]any{"project_id": "p", "model": "ibm/granite-13b-chat-v2", "timeout": 5 * time.Second}, false},
		{"missing project_id", map[string]any{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewProvider(tt.config)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ProviderName, gen.Name())
		})
	}
}

func TestRegistered(t *testing.T) {
	gen, err := llm.NewGenerator(ProviderName, map[string]any{"project_id": "p"})
	require.NoError(t, err)
	assert.Equal(t, ProviderName, gen.Name())
}

func newTestProvider(url string) *Provider {
	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.ProjectID = "wx-proj"
	cfg.Timeout = 5 * time.Second
	return NewProviderWithConfig(cfg)
}

func TestGenerateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ml/v1/text/generation", r.URL.Path)
		assert.Equal(t, "2023-05-29", r.URL.Query().Get("version"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "google/flan-ul2", body["model_id"])
		assert.Equal(t, "wx-proj", body["project_id"])
		assert.Equal(t, "prompt text", body["input"])
		assert.NotContains(t, body, "moderations")
		params, _ := body["parameters"].(map[string]any)
		assert.Equal(t, "greedy", params["decoding_method"])
		assert.EqualValues(t, 1, params["min_new_tokens"])
		assert.EqualValues(t, 100, params["max_new_tokens"])

		_, _ = w.Write([]byte(`{"model_id":"google/flan-ul2","results":[{"generated_text":"Paris.","generated_token_count":2,"stop_reason":"eos_token"}]}`))
	}))
	defer server.Close()

	resp, err := newTestProvider(server.URL).GenerateText(context.Background(), &llm.GenerationRequest{
		Prompt:      "prompt text",
		AccessToken: "tok",
		Parameters:  llm.Parameters{DecodingMethod: "greedy", MinNewTokens: 1, MaxNewTokens: 100},
	})
	require.NoError(t, err)
	text, ok := resp.FirstText()
	assert.True(t, ok)
	assert.Equal(t, "Paris.", text)
	assert.Equal(t, "eos_token", resp.Results[0].StopReason)
	assert.NotEmpty(t, resp.Raw)
}

func TestGenerateTextMissingResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model_id":"google/flan-ul2","warnings":[{"message":"x"}]}`))
	}))
	defer server.Close()

	resp, err := newTestProvider(server.URL).GenerateText(context.Background(), &llm.GenerationRequest{Prompt: "p", AccessToken: "tok"})
	require.NoError(t, err)
	_, ok := resp.FirstText()
	assert.False(t, ok)
	assert.Contains(t, string(resp.Raw), "warnings")
}

func TestGenerateTextBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"code":"authentication_token_expired"}]}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).GenerateText(context.Background(), &llm.GenerationRequest{Prompt: "p", AccessToken: "tok"})
	assert.Error(t, err)
}

func TestGenerateTextServerErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	gen, err := NewProvider(map[string]any{"project_id": "p", "base_url": server.URL, "max_retries": 3})
	require.NoError(t, err)
	_, err = gen.GenerateText(context.Background(), &llm.GenerationRequest{Prompt: "p", AccessToken: "tok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerateTextRequiresToken(t *testing.T) {
	_, err := newTestProvider("http://127.0.0.1:1").GenerateText(context.Background(), &llm.GenerationRequest{Prompt: "p"})
	assert.Error(t, err)
}
