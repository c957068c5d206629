package watcher

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Metrics counts polls and handled notifications. A nil *Metrics records nothing.
type Metrics struct {
	polls         *prometheus.CounterVec
	notifications prometheus.Counter
	handlerErrors prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer, namespace string) (*Metrics, error) {
	polls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "polls_total",
			Help:      "Notification polls by result",
		},
		[]string{"result"},
	)

	notifications := prometheus.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct
		Namespace: namespace,
		Subsystem: "watcher",
		Name:      "notifications_total",
		Help:      "Notifications handed to the handler",
	})

	handlerErrors := prometheus.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct
		Namespace: namespace,
		Subsystem: "watcher",
		Name:      "handler_errors_total",
		Help:      "Notifications the handler failed to process",
	})

	for _, collector := range []prometheus.Collector{polls, notifications, handlerErrors} {
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("watcher: failed to register metric: %w", err)
		}
	}

	return &Metrics{
		polls:         polls,
		notifications: notifications,
		handlerErrors: handlerErrors,
	}, nil
}

func (m *Metrics) poll(err error) {
	if m == nil {
		return
	}

	if err != nil {
		m.polls.WithLabelValues(resultError).Inc()

		return
	}

	m.polls.WithLabelValues(resultSuccess).Inc()
}

func (m *Metrics) handled(err error) {
	if m == nil {
		return
	}

	m.notifications.Inc()

	if err != nil {
		m.handlerErrors.Inc()
	}
}
