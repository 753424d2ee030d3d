package middleware

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsValid(t *testing.T) {
	opts := NewOptions()
	assert.Empty(t, opts.Validate())
	assert.True(t, opts.DisableRateLimit)
}

func TestFlags(t *testing.T) {
	opts := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--middleware.disable-rate-limit=false",
		"--middleware.rate-limit.limit=5",
		"--middleware.request-id.generator-type=hex",
	}))
	assert.False(t, opts.DisableRateLimit)
	assert.Equal(t, 5, opts.RateLimit.Limit)
	assert.Equal(t, "hex", opts.RequestID.GeneratorType)
}

func TestValidateOnlyEnabled(t *testing.T) {
	opts := NewOptions()
	opts.RateLimit.Limit = 0
	assert.Empty(t, opts.Validate())

	opts.DisableRateLimit = false
	assert.Len(t, opts.Validate(), 1)
}

func TestCORSWildcardWithCredentials(t *testing.T) {
	opts := NewCORSOptions()
	opts.AllowCredentials = true
	assert.Len(t, opts.Validate(), 1)
}

func TestRequestIDGeneratorType(t *testing.T) {
	opts := NewRequestIDOptions()
	opts.GeneratorType = "uuid"
	assert.Len(t, opts.Validate(), 1)
}
