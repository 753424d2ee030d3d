// Package search defines the document search capability used to ground answers.
package search

import (
	"context"
	"errors"
)

// ErrMalformedResponse is returned when a backend answer lacks the
// structure a Searcher promises, e.g. no results list or a document without
// its passage list.
var ErrMalformedResponse = errors.New("search: malformed response")

// Document is one search hit with its passages in backend order.
type Document struct {
	ID       string
	Passages []string
}

// Result is an ordered list of documents.
type Result struct {
	Documents []Document
}

// Searcher runs a natural-language query against a corpus.
// Implementations return ErrMalformedResponse (possibly wrapped) when the
// backend answer cannot be interpreted.
type Searcher interface {
	Search(ctx context.Context, query string) (*Result, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string) (*Result, error)

// Search calls f(ctx, query).
func (f SearcherFunc) Search(ctx context.Context, query string) (*Result, error) {
	return f(ctx, query)
}
