// Package discovery implements search.Searcher on the IBM Watson Discovery v2
// query API.
package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kart-io/askwx/pkg/auth/iam"
	discoveryopts "github.com/kart-io/askwx/pkg/options/discovery"
	"github.com/kart-io/askwx/pkg/search"
	"github.com/kart-io/askwx/pkg/utils/httpclient"
	"github.com/kart-io/askwx/pkg/utils/json"
)

// Client queries one Discovery project.
type Client struct {
	opts     *discoveryopts.Options
	endpoint string
	tokens   iam.TokenProvider
	client   *httpclient.Client
}

var _ search.Searcher = (*Client)(nil)

// NewClient creates a Discovery client. tokens supplies the bearer token for
// each query.
func NewClient(opts *discoveryopts.Options, tokens iam.TokenProvider) *Client {
	return &Client{
		opts: opts,
		endpoint: fmt.Sprintf("%s/v2/projects/%s/query?version=%s",
			opts.ServiceURL, url.PathEscape(opts.ProjectID), url.QueryEscape(opts.Version)),
		tokens: tokens,
		client: httpclient.NewClient(opts.Timeout, 0),
	}
}

type queryPassages struct {
	Enabled        bool `json:"enabled"`
	PerDocument    bool `json:"per_document"`
	FindAnswers    bool `json:"find_answers"`
	MaxPerDocument int  `json:"max_per_document"`
	Characters     int  `json:"characters"`
}

type queryRequest struct {
	NaturalLanguageQuery string        `json:"natural_language_query"`
	Count                int           `json:"count"`
	Passages             queryPassages `json:"passages"`
}

type queryPassage struct {
	PassageText *string `json:"passage_text"`
}

type queryResult struct {
	DocumentID       string          `json:"document_id"`
	DocumentPassages *[]queryPassage `json:"document_passages"`
}

type queryResponse struct {
	MatchingResults int            `json:"matching_results"`
	Results         *[]queryResult `json:"results"`
}

func (c *Client) newQuery(query string) *queryRequest {
	p := c.opts.Passages
	return &queryRequest{
		NaturalLanguageQuery: query,
		Count:                c.opts.Count,
		Passages: queryPassages{
			Enabled:        true,
			PerDocument:    p.PerDocument,
			FindAnswers:    p.FindAnswers,
			MaxPerDocument: p.MaxPerDocument,
			Characters:     p.Characters,
		},
	}
}

// Search runs query and returns documents with their raw passage text.
func (c *Client) Search(ctx context.Context, query string) (*search.Result, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery: obtain token: %w", err)
	}

	body, err := json.Marshal(c.newQuery(query))
	if err != nil {
		return nil, fmt.Errorf("discovery: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("discovery: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	tok.SetAuthHeader(req)

	var resp queryResponse
	if err := c.client.DoJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("discovery: query: %w", err)
	}
	return toResult(&resp)
}

func toResult(resp *queryResponse) (*search.Result, error) {
	if resp.Results == nil {
		return nil, fmt.Errorf("%w: missing results", search.ErrMalformedResponse)
	}

	docs := make([]search.Document, 0, len(*resp.Results))
	for i, r := range *resp.Results {
		if r.DocumentPassages == nil {
			return nil, fmt.Errorf("%w: result %d has no document_passages", search.ErrMalformedResponse, i)
		}
		passages := make([]string, 0, len(*r.DocumentPassages))
		for j, p := range *r.DocumentPassages {
			if p.PassageText == nil {
				return nil, fmt.Errorf("%w: result %d passage %d has no passage_text", search.ErrMalformedResponse, i, j)
			}
			passages = append(passages, *p.PassageText)
		}
		docs = append(docs, search.Document{ID: r.DocumentID, Passages: passages})
	}
	return &search.Result{Documents: docs}, nil
}
