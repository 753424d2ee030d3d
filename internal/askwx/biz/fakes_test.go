package biz

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/kart-io/askwx/pkg/llm"
	"github.com/kart-io/askwx/pkg/search"
)

type fakeTokens struct {
	mu    sync.Mutex
	calls int
	token string
	err   error
}

func (f *fakeTokens) Token(context.Context) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: f.token, TokenType: "Bearer"}, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	lastReq *llm.GenerationRequest
	resp    *llm.GenerationResponse
	err     error
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) GenerateText(_ context.Context, req *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func textResponse(text string) *llm.GenerationResponse {
	return &llm.GenerationResponse{
		Results: []llm.GenerationResult{{GeneratedText: &text}},
		Raw:     []byte(`{"results":[{"generated_text":"` + text + `"}]}`),
	}
}

func staticSearcher(docs ...search.Document) search.Searcher {
	return search.SearcherFunc(func(context.Context, string) (*search.Result, error) {
		return &search.Result{Documents: docs}, nil
	})
}

var defaultParams = llm.Parameters{DecodingMethod: "greedy", MinNewTokens: 1, MaxNewTokens: 100}
