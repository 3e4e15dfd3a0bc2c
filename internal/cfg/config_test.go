package cfg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
github_api_token = "abc"
log_format = "json"
retry_timeout = "2m"
file_fetch_concurrency = 4

[metrics]
pushgateway_url = "http://pushgateway:9091"
`

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load(strings.NewReader(testConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "abc", cfg.GithubAPIToken)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, "time_iso8601", cfg.LogTimeKey)
	assert.Equal(t, 4, cfg.FileFetchConcurrency)
	assert.Equal(t, "http://pushgateway:9091", cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "prflow", cfg.Metrics.Job)

	d, err := cfg.RetryTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}

func TestLoadFileWithoutPathReturnsDefault(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.GithubAPIToken = "from-file"

	err := cfg.ApplyEnv(mapLookup(map[string]string{
		EnvGithubToken:  "from-env",
		EnvLogLevel:     "debug",
		EnvDryRun:       "true",
		EnvLogFormat:    "",
		EnvRetryTimeout: "30s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.GithubAPIToken)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, LogFormatLogfmt, cfg.LogFormat)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "30s", cfg.RetryTimeout)
}

func TestApplyEnvInvalidBool(t *testing.T) {
	err := Default().ApplyEnv(mapLookup(map[string]string{EnvDryRun: "maybe"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.RetryTimeout = "soon"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.FileFetchConcurrency = 0
	assert.Error(t, cfg.Validate())
}
