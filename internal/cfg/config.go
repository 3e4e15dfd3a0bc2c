package cfg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
)

// Environment variables that override configuration file settings.
const (
	EnvGithubToken    = "GITHUB_TOKEN"
	EnvGithubAPIURL   = "GITHUB_API_URL"
	EnvLogLevel       = "PRFLOW_LOG_LEVEL"
	EnvLogFormat      = "PRFLOW_LOG_FORMAT"
	EnvRetryTimeout   = "PRFLOW_RETRY_TIMEOUT"
	EnvPushgatewayURL = "PRFLOW_PUSHGATEWAY_URL"
	EnvDryRun         = "PRFLOW_DRY_RUN"
)

const (
	LogFormatLogfmt  = "logfmt"
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

const defFileFetchConcurrency = 8

type Config struct {
	GithubAPIToken string `toml:"github_api_token"`
	// GithubAPIURL is the base URL of the GitHub API, it must only be set
	// for GitHub Enterprise servers.
	GithubAPIURL string `toml:"github_api_url"`
	LogFormat    string `toml:"log_format"`
	LogTimeKey   string `toml:"log_time_key"`
	LogLevel     string `toml:"log_level"`
	// RetryTimeout is a duration string, e.g. "2m". When it is 0 or empty
	// GitHub API operations are not retried.
	RetryTimeout         string  `toml:"retry_timeout"`
	FileFetchConcurrency int     `toml:"file_fetch_concurrency"`
	DryRun               bool    `toml:"dry_run"`
	Metrics              Metrics `toml:"metrics"`
}

type Metrics struct {
	PushgatewayURL string `toml:"pushgateway_url"`
	Job            string `toml:"job"`
}

func Default() *Config {
	return &Config{
		LogFormat:            LogFormatLogfmt,
		LogTimeKey:           "time_iso8601",
		LogLevel:             "info",
		FileFetchConcurrency: defFileFetchConcurrency,
		Metrics: Metrics{
			Job: "prflow",
		},
	}
}

// Load reads a TOML configuration, unset settings have their default values.
func Load(reader io.Reader) (*Config, error) {
	result := Default()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, result); err != nil {
		return nil, err
	}

	return result, nil
}

// LoadFile loads the configuration file at path.
// If path is empty the default configuration is returned.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading config file %q failed: %w", path, err)
	}

	return cfg, nil
}

// LoadDotEnv sets environment variables from a .env file in the current
// directory. Existing environment variables are not overwritten.
// A missing file is not an error.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env file failed: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings with the values of the environment variables
// that are set. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvGithubToken, &c.GithubAPIToken)
	str(EnvGithubAPIURL, &c.GithubAPIURL)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvLogFormat, &c.LogFormat)
	str(EnvRetryTimeout, &c.RetryTimeout)
	str(EnvPushgatewayURL, &c.Metrics.PushgatewayURL)

	if v, ok := lookup(EnvDryRun); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("environment variable %s: %w", EnvDryRun, err)
		}

		c.DryRun = b
	}

	return nil
}

// RetryTimeoutDuration returns the parsed RetryTimeout.
func (c *Config) RetryTimeoutDuration() (time.Duration, error) {
	if c.RetryTimeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.RetryTimeout)
	if err != nil {
		return 0, fmt.Errorf("retry_timeout: %w", err)
	}

	return d, nil
}

func (c *Config) Validate() error {
	switch c.LogFormat {
	case LogFormatLogfmt, LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log_format: unsupported value %q, supported: %s",
			c.LogFormat, strings.Join([]string{LogFormatLogfmt, LogFormatConsole, LogFormatJSON}, ", "),
		)
	}

	if _, err := c.RetryTimeoutDuration(); err != nil {
		return err
	}

	if c.FileFetchConcurrency < 1 {
		return fmt.Errorf("file_fetch_concurrency: must be >=1, is %d", c.FileFetchConcurrency)
	}

	if c.Metrics.PushgatewayURL != "" && c.Metrics.Job == "" {
		return errors.New("metrics.job: must be set when metrics.pushgateway_url is set")
	}

	return nil
}

func (c *Config) Marshal(writer io.Writer) error {
	return toml.NewEncoder(writer).Encode(c)
}
