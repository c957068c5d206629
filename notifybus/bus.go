// Package notifybus fans notifications out to several handlers over an in-process
// watermill pub/sub topic. Publish matches watcher.Handler, so a watcher can feed the
// bus directly while the store and the log each consume their own copy.
package notifybus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	serviceName         = "notification-bus"
	DefaultTopic        = "notifications"
	defaultBufferLength = 64
)

var (
	ErrNilHandler     = errors.New("notifybus: handler cannot be nil")
	ErrAlreadyRunning = errors.New("notifybus: already running")
	ErrSubscribe      = errors.New("notifybus: failed to subscribe")
	ErrPublishFailed  = errors.New("notifybus: failed to publish")
	ErrEncode         = errors.New("notifybus: failed to encode notification")
)

// Handler consumes one notification. Errors are logged; the message is acked either
// way so a failing handler does not stall the others.
type Handler func(ctx context.Context, notification map[string]any) error

type subscription struct {
	name     string
	handler  Handler
	messages <-chan *message.Message
}

type Bus struct {
	pubsub *gochannel.GoChannel
	topic  string
	buffer int64
	logger zerolog.Logger

	// subscriptions live until Stop, independent of the Start context.
	ctx    context.Context //nolint:containedctx
	cancel context.CancelFunc

	mu            sync.Mutex
	subscriptions []subscription
	wg            sync.WaitGroup
	running       atomic.Bool
	stopped       atomic.Bool
}

type Option func(*Bus)

func WithTopic(topic string) Option {
	return func(b *Bus) {
		if topic != "" {
			b.topic = topic
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithBufferLength sets how many messages may wait per subscriber before Publish blocks.
func WithBufferLength(length int64) Option {
	return func(b *Bus) {
		if length > 0 {
			b.buffer = length
		}
	}
}

func New(opts ...Option) *Bus {
	ctx, cancel := context.WithCancel(context.Background())

	//nolint:exhaustruct
	b := &Bus{
		topic:  DefaultTopic,
		buffer: defaultBufferLength,
		logger: log.Logger,
		ctx:    ctx,
		cancel: cancel,
	}

	for _, opt := range opts {
		opt(b)
	}

	b.logger = b.logger.With().Str("service_name", serviceName).Logger()

	//nolint:exhaustruct
	b.pubsub = gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: b.buffer,
	}, newLoggerAdapter(b.logger))

	return b
}

// Subscribe registers handler under name. Registration is immediate, so messages
// published before Start are buffered rather than lost.
func (b *Bus) Subscribe(name string, handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}

	if b.running.Load() {
		return ErrAlreadyRunning
	}

	messages, err := b.pubsub.Subscribe(b.ctx, b.topic)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribe, name, err)
	}

	b.mu.Lock()
	b.subscriptions = append(b.subscriptions, subscription{name: name, handler: handler, messages: messages})
	b.mu.Unlock()

	b.logger.Info().
		Str("topic", b.topic).
		Str("subscriber", name).
		Msg("The subscription to the topic has been registered")

	return nil
}

// Publish sends notification to every subscriber.
func (b *Bus) Publish(ctx context.Context, notification map[string]any) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("%w to topic %s: %w", ErrPublishFailed, b.topic, err)
	}

	return nil
}

// Start launches one consumer per subscription and returns.
func (b *Bus) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b.mu.Lock()
	subscriptions := append([]subscription(nil), b.subscriptions...)
	b.mu.Unlock()

	if len(subscriptions) == 0 {
		b.logger.Warn().Msg("No subscribers registered, published notifications are dropped")
	}

	for _, sub := range subscriptions {
		b.wg.Add(1)

		go func() {
			defer b.wg.Done()

			b.consume(ctx, sub)
		}()
	}

	b.logger.Info().Int("count", len(subscriptions)).Msg("Notification bus started")

	return nil
}

func (b *Bus) consume(ctx context.Context, sub subscription) {
	for msg := range sub.messages {
		var notification map[string]any

		if err := json.Unmarshal(msg.Payload, &notification); err != nil {
			b.logger.Error().
				Err(err).
				Str("subscriber", sub.name).
				Str("message_uuid", msg.UUID).
				Msg("Dropping notification that cannot be decoded")
		} else if err := sub.handler(ctx, notification); err != nil {
			b.logger.Error().
				Err(err).
				Str("subscriber", sub.name).
				Any("notification_id", notification["id"]).
				Msg("Subscriber failed to handle notification")
		}

		msg.Ack()
	}
}

// Stop closes the topic and waits for the consumers to drain what they hold.
func (b *Bus) Stop() error {
	if !b.stopped.CompareAndSwap(false, true) {
		return nil
	}

	b.cancel()

	err := b.pubsub.Close()

	b.wg.Wait()

	b.logger.Info().Msg("Notification bus stopped")

	return err
}

func (b *Bus) Name() string {
	return serviceName
}
