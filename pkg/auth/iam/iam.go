// Package iam exchanges an IBM Cloud API key for IAM bearer tokens.
//
// Tokens are returned as *oauth2.Token, so expiry checks and header
// formatting follow golang.org/x/oauth2:
//
//	client := iam.NewClient(opts)
//	tok, err := client.Token(ctx)          // one exchange per call
//	cached := iam.NewCachedProvider(client) // reused until expiry
//	tok, err = cached.Token(reqCtx)
package iam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	iamopts "github.com/kart-io/askwx/pkg/options/iam"
	"github.com/kart-io/askwx/pkg/utils/httpclient"
)

// GrantTypeAPIKey is the IAM grant type for API key exchange.
const GrantTypeAPIKey = "urn:ibm:params:oauth:grant-type:apikey"

// ErrEmptyToken is returned when IAM answers without an access token.
var ErrEmptyToken = errors.New("iam: response carried no access_token")

// TokenProvider obtains a bearer token for one outbound call.
type TokenProvider interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// Client performs the API key to token exchange.
type Client struct {
	apiKey   string
	tokenURL string
	client   *httpclient.Client
	now      func() time.Time
}

var _ TokenProvider = (*Client)(nil)

// NewClient creates an IAM client from options.
func NewClient(opts *iamopts.Options) *Client {
	return &Client{
		apiKey:   opts.APIKey,
		tokenURL: opts.TokenURL,
		client:   httpclient.NewClient(opts.Timeout, 0),
		now:      time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Expiration   int64  `json:"expiration"`
}

// Token performs a single token exchange.
func (c *Client) Token(ctx context.Context) (*oauth2.Token, error) {
	if c.apiKey == "" {
		return nil, errors.New("iam: api key is empty")
	}

	form := url.Values{}
	form.Set("grant_type", GrantTypeAPIKey)
	form.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("iam: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var resp tokenResponse
	if err := c.client.DoJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("iam: token request: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, ErrEmptyToken
	}

	tok := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
	}
	switch {
	case resp.Expiration > 0:
		tok.Expiry = time.Unix(resp.Expiration, 0)
	case resp.ExpiresIn > 0:
		tok.Expiry = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// CachedProvider reuses a token until oauth2.Token.Valid reports it is
// about to expire. A refresh runs under the ctx of the call that needs it.
type CachedProvider struct {
	client *Client

	mu  sync.Mutex
	tok *oauth2.Token
}

var _ TokenProvider = (*CachedProvider)(nil)

// NewCachedProvider wraps c with a token cache.
func NewCachedProvider(c *Client) *CachedProvider {
	return &CachedProvider{client: c}
}

// Token returns the cached token or fetches a fresh one with ctx.
// Concurrent callers wait for a single in-flight refresh.
func (p *CachedProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tok.Valid() {
		return p.tok, nil
	}
	tok, err := p.client.Token(ctx)
	if err != nil {
		return nil, err
	}
	p.tok = tok
	return tok, nil
}

// ProviderFunc adapts a function to TokenProvider.
type ProviderFunc func(ctx context.Context) (*oauth2.Token, error)

// Token calls f(ctx).
func (f ProviderFunc) Token(ctx context.Context) (*oauth2.Token, error) {
	return f(ctx)
}
