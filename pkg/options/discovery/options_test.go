package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	opts := NewOptions()
	assert.Equal(t, 3, opts.Count)
	assert.True(t, opts.Passages.PerDocument)
	assert.True(t, opts.Passages.FindAnswers)
	assert.Equal(t, 1, opts.Passages.MaxPerDocument)
	assert.Equal(t, 500, opts.Passages.Characters)
}

func TestCompleteFromLegacyEnv(t *testing.T) {
	t.Setenv("SERVICE_URL", "https://discovery.example.com/instances/abc/")
	t.Setenv("DISCOVERY_PROJECTID", "proj-1")

	opts := NewOptions()
	require.NoError(t, opts.Complete())
	assert.Equal(t, "https://discovery.example.com/instances/abc", opts.ServiceURL)
	assert.Equal(t, "proj-1", opts.ProjectID)
	assert.Empty(t, opts.Validate())
}

func TestValidateMissing(t *testing.T) {
	t.Setenv("SERVICE_URL", "")
	t.Setenv("DISCOVERY_PROJECTID", "")

	opts := NewOptions()
	require.NoError(t, opts.Complete())
	assert.Len(t, opts.Validate(), 2)

	opts.ServiceURL = "not a url"
	opts.ProjectID = "p"
	assert.Len(t, opts.Validate(), 1)
}
