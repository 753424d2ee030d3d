// Package common provides shared utilities for middleware packages.
package common

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// HeaderXRequestID is the header name for request ID.
const HeaderXRequestID = "X-Request-ID"

// RequestIDKey is the context key type for request ID.
type RequestIDKey struct{}

// GetRequestID returns the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, requestID)
}

var requestIDCounter uint64

// GenerateRequestID generates a random 32 character hex request ID.
func GenerateRequestID() string {
	b := make([]byte, 16)
	n, err := rand.Read(b)
	if err != nil || n != 16 {
		return fmt.Sprintf("%x-%x", time.Now().Unix(), atomic.AddUint64(&requestIDCounter, 1))
	}
	return hex.EncodeToString(b)
}

// GenerateULID generates a 26 character, time sortable request ID.
// ulid.Make uses a process-wide monotonic entropy source that is safe for
// concurrent use.
func GenerateULID() string {
	return ulid.Make().String()
}

// Generator returns the ID generator for a configured generator type.
func Generator(kind string) func() string {
	if kind == "ulid" {
		return GenerateULID
	}
	return GenerateRequestID
}
