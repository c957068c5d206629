// Package watcher polls the notifications endpoint and hands every new notification to
// a handler. Each poll asks only for notifications updated since the previous
// successful poll started.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andyle182810/ghclient/github"
	"github.com/andyle182810/ghclient/pagination"
	"github.com/andyle182810/ghclient/workerpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	serviceName     = "notification-watcher"
	defaultInterval = 60 * time.Second
	defaultMaxPages = 10
)

var ErrUnexpectedPayload = errors.New("watcher: notification list is not an array")

// Lister is satisfied by *github.Notifications.
type Lister interface {
	GetList(ctx context.Context, opts *github.NotificationListOptions) (any, error)
}

// Handler receives one decoded notification. Errors are logged and counted; the
// poll carries on with the next notification.
type Handler func(ctx context.Context, notification map[string]any) error

type Config struct {
	Interval      time.Duration
	All           bool
	Participating bool
	// PerPage enables paging; zero requests a single unpaged list.
	PerPage     int
	MaxPages    int
	ExecTimeout time.Duration
}

type Watcher struct {
	lister  Lister
	handler Handler
	cfg     Config
	logger  zerolog.Logger
	metrics *Metrics
	now     func() time.Time
	pool    *workerpool.WorkerPool

	mu    sync.Mutex
	since *time.Time
}

type Option func(*Watcher)

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(w *Watcher) {
		w.metrics = metrics
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		if now != nil {
			w.now = now
		}
	}
}

// WithSince starts watching from a known point instead of listing everything first.
func WithSince(since time.Time) Option {
	return func(w *Watcher) {
		w.since = &since
	}
}

func New(lister Lister, handler Handler, cfg Config, opts ...Option) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}

	if cfg.PerPage > 0 {
		_, cfg.PerPage, _ = pagination.Normalize(1, cfg.PerPage)
	}

	w := &Watcher{ //nolint:exhaustruct
		lister:  lister,
		handler: handler,
		cfg:     cfg,
		logger:  log.Logger,
		metrics: nil,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(w)
	}

	w.logger = w.logger.With().Str("service_name", serviceName).Logger()

	w.pool = workerpool.New(w,
		workerpool.WithName(serviceName),
		workerpool.WithWorkerCount(1),
		workerpool.WithTickInterval(cfg.Interval),
		workerpool.WithExecutionTimeout(cfg.ExecTimeout),
		workerpool.WithImmediateStart(),
		workerpool.WithLogger(w.logger),
	)

	return w
}

// Since returns the lower bound used by the next poll, or nil before the first
// successful one.
func (w *Watcher) Since() *time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.since == nil {
		return nil
	}

	since := *w.since

	return &since
}

// Execute runs a single poll. The since marker only moves forward when every page
// was listed successfully.
func (w *Watcher) Execute(ctx context.Context) error {
	started := w.now()
	since := w.Since()

	handled, complete, err := w.poll(ctx, since)
	w.metrics.poll(err)

	if err != nil {
		return fmt.Errorf("watcher: list notifications: %w", err)
	}

	if !complete {
		// Older pages were left unread; keep since so the next poll lists them again.
		w.logger.Warn().
			Int("handled", handled).
			Int("max_pages", w.cfg.MaxPages).
			Msg("Notification poll stopped at the page limit, keeping since")

		return nil
	}

	w.mu.Lock()
	w.since = &started
	w.mu.Unlock()

	event := w.logger.Debug().Int("handled", handled)
	if since != nil {
		event = event.Time("since", *since)
	}

	event.Msg("Notification poll completed")

	return nil
}

// poll lists up to MaxPages pages. complete is false when the last page was full
// and the page limit stopped the listing.
func (w *Watcher) poll(ctx context.Context, since *time.Time) (int, bool, error) {
	handled := 0

	for page := 1; page <= w.cfg.MaxPages; page++ {
		opts := &github.NotificationListOptions{
			All:           w.cfg.All,
			Participating: w.cfg.Participating,
			Since:         since,
			Before:        nil,
			ListOptions:   github.ListOptions{Page: 0, PerPage: 0},
		}

		if w.cfg.PerPage > 0 {
			opts.ListOptions = github.ListOptions{Page: page, PerPage: w.cfg.PerPage}
		}

		payload, err := w.lister.GetList(ctx, opts)
		if err != nil {
			return handled, false, err
		}

		items, ok := payload.([]any)
		if !ok {
			return handled, false, fmt.Errorf("%w: got %T", ErrUnexpectedPayload, payload)
		}

		for _, item := range items {
			notification, ok := item.(map[string]any)
			if !ok {
				w.logger.Warn().Type("type", item).Msg("Skipping notification that is not an object")

				continue
			}

			w.handle(ctx, notification)
			handled++
		}

		if w.cfg.PerPage <= 0 || !pagination.HasNext(len(items), w.cfg.PerPage) {
			return handled, true, nil
		}
	}

	return handled, false, nil
}

func (w *Watcher) handle(ctx context.Context, notification map[string]any) {
	err := w.handler(ctx, notification)
	w.metrics.handled(err)

	if err != nil {
		w.logger.Error().
			Err(err).
			Any("notification_id", notification["id"]).
			Msg("Notification handler failed")
	}
}

// Start polls immediately and then every Interval until Stop or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	return w.pool.Start(ctx)
}

func (w *Watcher) Stop() error {
	return w.pool.Stop()
}

func (w *Watcher) Name() string {
	return serviceName
}
