package main

import (
	"context"
	"errors"
	"time"

	"github.com/andyle182810/ghclient/httpclient"
	"github.com/andyle182810/ghclient/metricserver"
	"github.com/andyle182810/ghclient/notifybus"
	"github.com/andyle182810/ghclient/notifystore"
	"github.com/andyle182810/ghclient/runner"
	"github.com/andyle182810/ghclient/watcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const metricsNamespace = "ghctl"

type watchFlags struct {
	interval      time.Duration
	perPage       int
	maxPages      int
	all           bool
	participating bool
	store         string
	metrics       bool
	metricsPort   int
}

func newWatchCommand(a *app) *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll notifications until interrupted, storing each one seen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			cfg := a.cfg

			if f.Changed("interval") {
				cfg.WatchInterval = flags.interval
			}

			if f.Changed("per-page") {
				cfg.WatchPerPage = flags.perPage
			}

			if f.Changed("max-pages") {
				cfg.WatchMaxPages = flags.maxPages
			}

			if f.Changed("all") {
				cfg.WatchAll = flags.all
			}

			if f.Changed("participating") {
				cfg.WatchParticipating = flags.participating
			}

			if f.Changed("store") {
				cfg.StoreDSN = flags.store
			}

			if f.Changed("metrics") {
				cfg.MetricServerEnabled = flags.metrics
			}

			if f.Changed("metrics-port") {
				cfg.MetricServerPort = flags.metricsPort
			}

			return a.runWatch(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&flags.interval, "interval", time.Minute, "time between polls (env WATCH_INTERVAL)")
	cmd.Flags().IntVar(&flags.perPage, "per-page", 50, "page size, 0 disables paging (env WATCH_PER_PAGE)") //nolint:mnd
	cmd.Flags().IntVar(&flags.maxPages, "max-pages", 10, "pages fetched per poll (env WATCH_MAX_PAGES)")    //nolint:mnd
	cmd.Flags().BoolVar(&flags.all, "all", false, "include notifications already marked read (env WATCH_ALL)")
	cmd.Flags().BoolVar(&flags.participating, "participating", true, "only participating threads (env WATCH_PARTICIPATING)")
	cmd.Flags().StringVar(&flags.store, "store", "", "SQLite DSN, empty only logs notifications (env STORE_DSN)")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", true, "serve /metrics and /status (env METRIC_SERVER_ENABLED)")
	cmd.Flags().IntVar(&flags.metricsPort, "metrics-port", 9090, "metrics port (env METRIC_SERVER_PORT)") //nolint:mnd

	return cmd
}

func (a *app) runWatch(ctx context.Context) error {
	cfg := a.cfg

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
	)

	clientMetrics, err := httpclient.NewMetrics(registry, metricsNamespace)
	if err != nil {
		return err
	}

	watchMetrics, err := watcher.NewMetrics(registry, metricsNamespace)
	if err != nil {
		return err
	}

	gh, err := a.newGitHub(httpclient.WithMetrics(clientMetrics))
	if err != nil {
		return err
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(a.logger),
		runner.WithShutdownTimeout(cfg.GracefulShutdownPeriod),
	}

	bus := notifybus.New(notifybus.WithLogger(a.logger))

	if err := bus.Subscribe("log", a.logNotification); err != nil {
		return errors.Join(err, bus.Stop())
	}

	if cfg.StoreDSN != "" {
		store, err := notifystore.Open(ctx, cfg.StoreDSN, notifystore.WithLogger(a.logger))
		if err != nil {
			return errors.Join(err, bus.Stop())
		}

		if err := bus.Subscribe("store", store.Save); err != nil {
			return errors.Join(err, store.Stop(), bus.Stop())
		}

		runnerOpts = append(runnerOpts, runner.WithInfrastructureService(store))
	}

	runnerOpts = append(runnerOpts, runner.WithInfrastructureService(bus))

	notificationWatcher := watcher.New(gh.Notifications, bus.Publish, watcher.Config{
		Interval:      cfg.WatchInterval,
		All:           cfg.WatchAll,
		Participating: cfg.WatchParticipating,
		PerPage:       cfg.WatchPerPage,
		MaxPages:      cfg.WatchMaxPages,
		ExecTimeout:   cfg.WatchExecTimeout,
	},
		watcher.WithLogger(a.logger),
		watcher.WithMetrics(watchMetrics),
	)

	runnerOpts = append(runnerOpts, runner.WithCoreService(notificationWatcher))

	if cfg.MetricServerEnabled {
		runnerOpts = append(runnerOpts, runner.WithCoreService(metricserver.New(&metricserver.Config{
			Host:         cfg.MetricServerHost,
			Port:         cfg.MetricServerPort,
			ReadTimeout:  cfg.MetricServerReadTimeout,
			WriteTimeout: cfg.MetricServerWriteTimeout,
			GracePeriod:  cfg.GracefulShutdownPeriod,
			Gatherer:     registry,
			Logger:       &a.logger,
		})))
	}

	return runner.New(runnerOpts...).Run(ctx)
}

func (a *app) logNotification(_ context.Context, notification map[string]any) error {
	subject, _ := notification["subject"].(map[string]any)

	a.logger.Info().
		Any("id", notification["id"]).
		Any("reason", notification["reason"]).
		Any("title", subject["title"]).
		Msg("Notification received")

	return nil
}

func newHistoryCommand(a *app) *cobra.Command {
	var (
		store         string
		page, perPage int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Page through the notifications stored by watch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn := a.cfg.StoreDSN
			if cmd.Flags().Changed("store") {
				dsn = store
			}

			notifications, err := notifystore.Open(cmd.Context(), dsn, notifystore.WithLogger(a.logger))
			if err != nil {
				return err
			}

			defer func() {
				_ = notifications.Stop()
			}()

			result, err := notifications.Page(cmd.Context(), page, perPage)
			if err != nil {
				return err
			}

			return a.print(result)
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "SQLite DSN (env STORE_DSN)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 30, "results per page, at most 100") //nolint:mnd

	return cmd
}
