package workerpool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrAlreadyRunning = errors.New("worker pool is already running")

// Executor runs one unit of work per tick.
type Executor interface {
	Execute(ctx context.Context) error
}

// WorkerPool calls its Executor on every tick from workerCount goroutines. The
// dispatcher waits while every worker is busy.
type WorkerPool struct {
	name         string
	executor     Executor
	workerCount  int
	tickInterval time.Duration
	execTimeout  time.Duration
	immediate    bool
	logger       zerolog.Logger
	jobChan      chan struct{}
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.Mutex
	running      bool
}

type Option func(*WorkerPool)

func New(executor Executor, opts ...Option) *WorkerPool {
	pool := &WorkerPool{
		name:         "worker-pool",
		executor:     executor,
		workerCount:  1,
		tickInterval: time.Second,
		execTimeout:  0,
		immediate:    false,
		logger:       log.Logger,
		jobChan:      nil,
		cancel:       nil,
		wg:           sync.WaitGroup{},
		mu:           sync.Mutex{},
		running:      false,
	}

	for _, opt := range opts {
		opt(pool)
	}

	pool.logger = pool.logger.With().Str("service_name", pool.name).Logger()

	return pool
}

func WithWorkerCount(count int) Option {
	return func(pool *WorkerPool) {
		if count > 0 {
			pool.workerCount = count
		}
	}
}

func WithTickInterval(duration time.Duration) Option {
	return func(pool *WorkerPool) {
		if duration > 0 {
			pool.tickInterval = duration
		}
	}
}

func WithExecutionTimeout(timeout time.Duration) Option {
	return func(pool *WorkerPool) {
		if timeout > 0 {
			pool.execTimeout = timeout
		}
	}
}

func WithName(name string) Option {
	return func(pool *WorkerPool) {
		if name != "" {
			pool.name = name
		}
	}
}

// WithImmediateStart dispatches the first job right away instead of after one interval.
func WithImmediateStart() Option {
	return func(pool *WorkerPool) {
		pool.immediate = true
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(pool *WorkerPool) {
		pool.logger = logger
	}
}

func (pool *WorkerPool) Name() string {
	return pool.name
}

// Start launches the workers and returns. They run until Stop or ctx is done.
func (pool *WorkerPool) Start(ctx context.Context) error {
	pool.mu.Lock()
	if pool.running {
		pool.mu.Unlock()

		return ErrAlreadyRunning
	}

	pool.running = true
	pool.jobChan = make(chan struct{})

	workerCtx, cancel := context.WithCancel(ctx)
	pool.cancel = cancel
	pool.mu.Unlock()

	pool.logger.Info().
		Int("worker_count", pool.workerCount).
		Dur("tick_interval", pool.tickInterval).
		Dur("exec_timeout", pool.execTimeout).
		Msg("Worker pool is starting.")

	for workerID := range pool.workerCount {
		pool.wg.Add(1)

		go pool.worker(workerCtx, workerID)
	}

	pool.wg.Add(1)

	go pool.dispatcher(workerCtx)

	return nil
}

func (pool *WorkerPool) Stop() error {
	pool.mu.Lock()
	if !pool.running {
		pool.mu.Unlock()

		return nil
	}

	pool.running = false
	pool.mu.Unlock()

	pool.logger.Info().Msg("Worker pool is stopping.")

	if pool.cancel != nil {
		pool.cancel()
	}

	pool.wg.Wait()

	pool.logger.Info().Msg("Worker pool has stopped.")

	return nil
}

func (pool *WorkerPool) dispatcher(ctx context.Context) {
	defer pool.wg.Done()
	defer close(pool.jobChan)

	ticker := time.NewTicker(pool.tickInterval)
	defer ticker.Stop()

	if pool.immediate && !pool.dispatch(ctx) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			pool.logger.Debug().Msg("Dispatcher is shutting down.")

			return
		case <-ticker.C:
			if !pool.dispatch(ctx) {
				return
			}
		}
	}
}

// dispatch hands one job to an idle worker. It reports false once ctx is done.
func (pool *WorkerPool) dispatch(ctx context.Context) bool {
	select {
	case pool.jobChan <- struct{}{}:
		return true
	case <-ctx.Done():
		pool.logger.Debug().Msg("Dispatcher is shutting down.")

		return false
	}
}

func (pool *WorkerPool) worker(ctx context.Context, id int) {
	defer pool.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-pool.jobChan:
			if !ok {
				return
			}

			pool.executeWithTimeout(ctx, id)
		}
	}
}

func (pool *WorkerPool) executeWithTimeout(ctx context.Context, workerID int) {
	var execCtx context.Context

	var cancel context.CancelFunc

	if pool.execTimeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, pool.execTimeout)
	} else {
		execCtx, cancel = context.WithCancel(ctx)
	}

	defer cancel()

	err := pool.executor.Execute(execCtx)
	if err != nil && !errors.Is(err, context.Canceled) {
		pool.logger.Error().
			Err(err).
			Int("worker_id", workerID).
			Msg("Executor failed.")
	}
}
