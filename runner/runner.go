package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultShutdownTimeout = 30 * time.Second

var (
	ErrServicePanic    = errors.New("runner: service panicked")
	ErrServiceFailed   = errors.New("runner: service failed")
	ErrShutdownTimeout = errors.New("runner: shutdown timeout exceeded")
)

// Service is started in its own goroutine. Start may block until ctx is done; a
// non-nil error other than context.Canceled stops the whole runner.
type Service interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}

type Runner struct {
	coreServices           []Service
	infrastructureServices []Service
	shutdownTimeout        time.Duration
	logger                 zerolog.Logger
	signals                []os.Signal
}

type Option func(*Runner)

func New(opts ...Option) *Runner {
	runner := &Runner{
		coreServices:           make([]Service, 0),
		infrastructureServices: make([]Service, 0),
		shutdownTimeout:        defaultShutdownTimeout,
		logger:                 log.Logger,
		signals:                []os.Signal{os.Interrupt, syscall.SIGTERM},
	}

	for _, opt := range opts {
		opt(runner)
	}

	return runner
}

func WithCoreService(svc Service) Option {
	return func(r *Runner) {
		r.coreServices = append(r.coreServices, svc)
	}
}

func WithInfrastructureService(svc Service) Option {
	return func(r *Runner) {
		r.infrastructureServices = append(r.infrastructureServices, svc)
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.shutdownTimeout = d
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSignals replaces the signals that trigger shutdown. No signals means only ctx
// cancellation stops the runner.
func WithSignals(signals ...os.Signal) Option {
	return func(r *Runner) {
		r.signals = signals
	}
}

// Run starts infrastructure services, then core services, and blocks until ctx is
// cancelled, a shutdown signal arrives or a service fails. Services are stopped in
// reverse order: core first, then infrastructure.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.signals) > 0 {
		var stop context.CancelFunc

		ctx, stop = signal.NotifyContext(ctx, r.signals...)
		defer stop()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(r.coreServices)+len(r.infrastructureServices))

	r.logger.Info().Int("count", len(r.infrastructureServices)).Msg("Starting infrastructure services")
	r.startServices(runCtx, r.infrastructureServices, errCh)

	r.logger.Info().Int("count", len(r.coreServices)).Msg("Starting core services")
	r.startServices(runCtx, r.coreServices, errCh)

	r.logger.Info().
		Int("pid", os.Getpid()).
		Int("core_services", len(r.coreServices)).
		Int("infra_services", len(r.infrastructureServices)).
		Msg("All services started, waiting for shutdown signal")

	var runErr error

	select {
	case <-ctx.Done():
		r.logger.Warn().Msg("Shutdown signal received")
	case runErr = <-errCh:
		r.logger.Error().Err(runErr).Msg("Service failed, shutting down")
	}

	cancel()

	shutdownErr := errors.Join(
		r.shutdownWithTimeout(r.coreServices),
		r.shutdownWithTimeout(r.infrastructureServices),
	)

	r.logger.Info().Msg("Graceful shutdown completed")

	return errors.Join(runErr, shutdownErr)
}

func (r *Runner) startServices(ctx context.Context, services []Service, errCh chan<- error) {
	for _, svc := range services {
		go func(service Service) {
			defer func() {
				if rec := recover(); rec != nil {
					errCh <- fmt.Errorf("%w: %s: %v", ErrServicePanic, service.Name(), rec)
				}
			}()

			r.logger.Info().Str("service_name", service.Name()).Msg("Starting service")

			if err := service.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("%w: %s: %w", ErrServiceFailed, service.Name(), err)
			}
		}(svc)
	}
}

func (r *Runner) shutdownWithTimeout(services []Service) error {
	if len(services) == 0 {
		return nil
	}

	done := make(chan struct{})

	go func() {
		r.concurrentStop(services)
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(r.shutdownTimeout):
		r.logger.Error().
			Dur("timeout", r.shutdownTimeout).
			Msg("Shutdown timeout exceeded, some services may not have stopped cleanly")

		return ErrShutdownTimeout
	}
}

func (r *Runner) concurrentStop(services []Service) {
	var wg sync.WaitGroup

	for _, svc := range services {
		wg.Add(1)

		go func(service Service) {
			defer wg.Done()

			r.logger.Info().Str("service_name", service.Name()).Msg("Stopping service")

			if err := service.Stop(); err != nil {
				r.logger.Error().
					Err(err).
					Str("service_name", service.Name()).
					Msg("Service failed to stop")
			} else {
				r.logger.Info().
					Str("service_name", service.Name()).
					Msg("Service stopped")
			}
		}(svc)
	}

	wg.Wait()
}
