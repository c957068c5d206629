package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/andyle182810/ghclient/github"
	"github.com/caarlos0/env/v11"
)

const PublicHost = "github.com"

var ErrInvalidEnterpriseURL = errors.New("invalid GITHUB_ENTERPRISE_URL")

type Config struct {
	// Application
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// GitHub API
	GitHubAPIURL            string        `env:"GITHUB_API_URL"             envDefault:"https://api.github.com"`
	GitHubToken             string        `env:"GITHUB_TOKEN"`
	GitHubTimeout           time.Duration `env:"GITHUB_TIMEOUT"             envDefault:"30s"`
	GitHubUserAgent         string        `env:"GITHUB_USER_AGENT"          envDefault:"ghctl"`
	GitHubAPIVersion        string        `env:"GITHUB_API_VERSION"         envDefault:"2022-11-28"`
	GitHubRequestsPerSecond float64       `env:"GITHUB_REQUESTS_PER_SECOND" envDefault:"0"`
	GitHubBurst             int           `env:"GITHUB_BURST"               envDefault:"1"`
	GitHubMaxResponseSize   int64         `env:"GITHUB_MAX_RESPONSE_SIZE"   envDefault:"0"`
	// GitHubHeaders are extra headers sent on every request, as Name:value,Name:value
	GitHubHeaders map[string]string `env:"GITHUB_HEADERS"`

	// GitHub Enterprise Server. GITHUB_HOST picks the API host; empty means github.com
	GitHubEnterpriseURL string `env:"GITHUB_ENTERPRISE_URL"`
	GitHubHost          string `env:"GITHUB_HOST"`

	// GitHub App installation auth, used instead of GITHUB_TOKEN when all three are set
	GitHubAppID          int64  `env:"GITHUB_APP_ID"`
	GitHubInstallationID int64  `env:"GITHUB_INSTALLATION_ID"`
	GitHubPrivateKeyPath string `env:"GITHUB_PRIVATE_KEY_PATH"`

	// Notification watcher
	WatchInterval      time.Duration `env:"WATCH_INTERVAL"      envDefault:"60s"`
	WatchPerPage       int           `env:"WATCH_PER_PAGE"      envDefault:"50"`
	WatchMaxPages      int           `env:"WATCH_MAX_PAGES"     envDefault:"10"`
	WatchAll           bool          `env:"WATCH_ALL"           envDefault:"false"`
	WatchParticipating bool          `env:"WATCH_PARTICIPATING" envDefault:"true"`
	WatchExecTimeout   time.Duration `env:"WATCH_EXEC_TIMEOUT"  envDefault:"2m"`

	// SQLite notification store; empty disables it
	StoreDSN string `env:"STORE_DSN" envDefault:"file:ghctl.db"`

	// Metric Server
	MetricServerEnabled      bool          `env:"METRIC_SERVER_ENABLED"       envDefault:"true"`
	MetricServerHost         string        `env:"METRIC_SERVER_HOST"          envDefault:"0.0.0.0"`
	MetricServerPort         int           `env:"METRIC_SERVER_PORT"          envDefault:"9090"`
	MetricServerReadTimeout  time.Duration `env:"METRIC_SERVER_READ_TIMEOUT"  envDefault:"10s"`
	MetricServerWriteTimeout time.Duration `env:"METRIC_SERVER_WRITE_TIMEOUT" envDefault:"10s"`

	// Graceful Shutdown
	GracefulShutdownPeriod time.Duration `env:"GRACEFUL_SHUTDOWN_PERIOD" envDefault:"10s"`
}

func New() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// NewFromMap parses cfg from environment only, ignoring the process environment.
func NewFromMap(environment map[string]string) (*Config, error) {
	var cfg Config

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil { //nolint:exhaustruct
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// UsesApp reports whether GitHub App installation credentials are configured.
func (c *Config) UsesApp() bool {
	return c.GitHubAppID > 0 && c.GitHubInstallationID > 0 && c.GitHubPrivateKeyPath != ""
}

// APIHost is one host the CLI can talk to and the base URL of its REST API.
type APIHost struct {
	Host    string
	BaseURL string
}

// APIHosts lists github.com first, then the Enterprise Server host when configured.
func (c *Config) APIHosts() ([]APIHost, error) {
	hosts := []APIHost{{Host: PublicHost, BaseURL: c.GitHubAPIURL}}

	if c.GitHubEnterpriseURL == "" {
		return hosts, nil
	}

	u, err := url.Parse(c.GitHubEnterpriseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEnterpriseURL, c.GitHubEnterpriseURL)
	}

	return append(hosts, APIHost{Host: u.Hostname(), BaseURL: c.GitHubEnterpriseURL}), nil
}

func (c *Config) GitHubOptions() *github.Options {
	options := github.NewOptions(map[string]string{
		github.OptionAPIURL:       c.GitHubAPIURL,
		github.OptionAPIUserAgent: c.GitHubUserAgent,
		github.OptionAPIVersion:   c.GitHubAPIVersion,
	})

	if c.GitHubTimeout > 0 {
		options.Set(github.OptionAPITimeout, c.GitHubTimeout.String())
	}

	if c.GitHubToken != "" && !c.UsesApp() {
		options.Set(github.OptionAPIToken, c.GitHubToken)
	}

	return options
}
