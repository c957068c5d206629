package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andyle182810/ghclient/authtoken"
	"github.com/andyle182810/ghclient/cmd/ghctl/internal/config"
	"github.com/andyle182810/ghclient/github"
	"github.com/andyle182810/ghclient/httpclient"
	"github.com/andyle182810/ghclient/logutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

var (
	errInvalidRepository = errors.New("invalid repository, expected OWNER/REPO")
	errInvalidID         = errors.New("invalid id")
)

// app carries what every subcommand needs once the persistent flags are parsed.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer

	loadConfig   func() (*config.Config, error)
	globalLogger bool
}

type globalFlags struct {
	apiURL    string
	token     string
	timeout   time.Duration
	logLevel  string
	logFormat string
	userAgent string
	host      string
}

func newRootCommand() *cobra.Command {
	root, a := newRootCommandWith(config.New)
	a.globalLogger = true

	return root
}

func newRootCommandWith(loadConfig func() (*config.Config, error)) (*cobra.Command, *app) {
	a := &app{
		cfg:          nil,
		logger:       log.Logger,
		out:          os.Stdout,
		loadConfig:   loadConfig,
		globalLogger: false,
	}

	var flags globalFlags

	root := &cobra.Command{
		Use:           "ghctl",
		Short:         "Work with GitHub issues and notifications",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, &flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", "", "GitHub API base URL (env GITHUB_API_URL)")
	pf.StringVar(&flags.token, "token", "", "personal access token (env GITHUB_TOKEN)")
	pf.DurationVar(&flags.timeout, "timeout", 0, "HTTP timeout per request (env GITHUB_TIMEOUT)")
	pf.StringVar(&flags.logLevel, "log-level", "", "trace, debug, info, warn or error (env LOG_LEVEL)")
	pf.StringVar(&flags.logFormat, "log-format", "", "console or json (env LOG_FORMAT)")
	pf.StringVar(&flags.userAgent, "user-agent", "", "User-Agent header (env GITHUB_USER_AGENT)")
	pf.StringVar(&flags.host, "host", "", "API host, github.com or the GITHUB_ENTERPRISE_URL host (env GITHUB_HOST)")

	root.AddCommand(newIssuesCommand(a), newNotificationsCommand(a))

	return root, a
}

// setup loads the environment config and lets explicitly set flags override it.
func (a *app) setup(cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	pf := cmd.Flags()

	overrideString(pf, "api-url", &cfg.GitHubAPIURL, flags.apiURL)
	overrideString(pf, "token", &cfg.GitHubToken, flags.token)
	overrideString(pf, "log-level", &cfg.LogLevel, flags.logLevel)
	overrideString(pf, "log-format", &cfg.LogFormat, flags.logFormat)
	overrideString(pf, "user-agent", &cfg.GitHubUserAgent, flags.userAgent)
	overrideString(pf, "host", &cfg.GitHubHost, flags.host)

	if pf.Changed("timeout") {
		cfg.GitHubTimeout = flags.timeout
	}

	a.cfg = cfg
	a.out = cmd.OutOrStdout()
	a.logger = logutil.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	if a.globalLogger {
		log.Logger = a.logger
	}

	return nil
}

func overrideString(flags *pflag.FlagSet, name string, target *string, value string) {
	if flags.Changed(name) {
		*target = value
	}
}

// newGitHub builds one client per configured API host and picks the one named by
// GITHUB_HOST or --host. extra options are applied last.
func (a *app) newGitHub(extra ...httpclient.Option) (*github.GitHub, error) {
	options := a.cfg.GitHubOptions()

	opts, err := github.TransportOptions(options)
	if err != nil {
		return nil, err
	}

	opts = append(opts,
		httpclient.WithLogger(a.logger),
		httpclient.WithDefaultHeaders(a.cfg.GitHubHeaders),
		httpclient.WithMaxResponseSize(a.cfg.GitHubMaxResponseSize),
	)

	if a.cfg.GitHubRequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(a.cfg.GitHubRequestsPerSecond), max(a.cfg.GitHubBurst, 1))
		opts = append(opts, httpclient.WithRateLimiter(limiter))
	}

	hosts, err := a.cfg.APIHosts()
	if err != nil {
		return nil, err
	}

	var privateKey []byte

	if a.cfg.UsesApp() {
		privateKey, err = os.ReadFile(a.cfg.GitHubPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read GitHub App private key: %w", err)
		}
	}

	registry := httpclient.NewRegistry(append(opts, extra...)...)

	for _, host := range hosts {
		var hostOpts []httpclient.Option

		if privateKey != nil {
			provider, err := a.installation(privateKey, host.BaseURL)
			if err != nil {
				return nil, err
			}

			hostOpts = append(hostOpts, httpclient.WithTokenProvider(provider))
		}

		registry.Register(host.Host, host.BaseURL, hostOpts...)
	}

	transport, err := registry.Resolve(a.cfg.GitHubHost)
	if err != nil {
		return nil, fmt.Errorf("%w, configured hosts: %s", err, strings.Join(registry.Hosts(), ", "))
	}

	return github.New(options, transport), nil
}

// installation mints tokens against the API at baseURL, so each host gets its own.
func (a *app) installation(privateKey []byte, baseURL string) (*authtoken.Installation, error) {
	return authtoken.NewInstallation(a.cfg.GitHubAppID, a.cfg.GitHubInstallationID, privateKey,
		authtoken.WithBaseURL(baseURL),
		authtoken.WithTimeout(a.cfg.GitHubTimeout),
	)
}

// call builds a client, runs fn with it and prints the result.
func (a *app) call(fn func(gh *github.GitHub) (any, error)) error {
	gh, err := a.newGitHub()
	if err != nil {
		return err
	}

	result, err := fn(gh)
	if err != nil {
		return err
	}

	return a.print(result)
}

// print writes v as indented JSON. The empty string returned for bodyless
// responses prints nothing.
func (a *app) print(v any) error {
	if s, ok := v.(string); ok && s == "" {
		return nil
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func parseRepository(arg string) (string, string, error) {
	owner, repo, ok := strings.Cut(arg, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("%w: %q", errInvalidRepository, arg)
	}

	return owner, repo, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, arg)
	}

	return id, nil
}

// parseTime accepts RFC 3339; empty means not set.
func parseTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil //nolint:nilnil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, expected RFC 3339: %w", value, err)
	}

	return &t, nil
}
