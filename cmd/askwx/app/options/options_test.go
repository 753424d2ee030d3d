package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsSections(t *testing.T) {
	fss := NewServerOptions().Flags()
	assert.Equal(t, []string{"http", "log", "tracing", "middleware", "discovery", "iam", "llm", "askwx", "misc"}, fss.Order)

	for flag, section := range map[string]string{
		"http.addr":             "http",
		"discovery.service-url": "discovery",
		"iam.api-key":           "iam",
		"llm.model":             "llm",
		"askwx.prompt-template": "askwx",
		"shutdown-timeout":      "misc",
	} {
		assert.NotNil(t, fss.FlagSets[section].Lookup(flag), flag)
	}
}

func TestCompleteReadsLegacyEnvironment(t *testing.T) {
	t.Setenv("APIKEY", "key")
	t.Setenv("SERVICE_URL", "https://discovery.example.com/instances/1/")
	t.Setenv("DISCOVERY_PROJECTID", "discovery-project")
	t.Setenv("WATSONX_PROJECTID", "watsonx-project")

	o := NewServerOptions()
	require.NoError(t, o.Complete())
	require.NoError(t, o.Validate())

	cfg, err := o.Config()
	require.NoError(t, err)
	assert.Equal(t, "key", cfg.IAMOptions.APIKey)
	assert.Equal(t, "https://discovery.example.com/instances/1", cfg.DiscoveryOptions.ServiceURL)
	assert.Equal(t, "discovery-project", cfg.DiscoveryOptions.ProjectID)
	assert.Equal(t, "watsonx-project", cfg.LLMOptions.ProjectID)
}

func TestValidateReportsMissingCredentials(t *testing.T) {
	t.Setenv("APIKEY", "")
	t.Setenv("SERVICE_URL", "")
	t.Setenv("DISCOVERY_PROJECTID", "")
	t.Setenv("WATSONX_PROJECTID", "")

	o := NewServerOptions()
	require.NoError(t, o.Complete())
	err := o.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iam.api-key")
	assert.Contains(t, err.Error(), "discovery.service-url")
}
