package metricserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	metricsPath = "/metrics"
	statusPath  = "/status"

	defaultGracePeriod = 5 * time.Second
)

type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	GracePeriod  time.Duration
	// Gatherer defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

type Server struct {
	gracePeriod time.Duration
	address     string
	echo        *echo.Echo
	logger      zerolog.Logger
}

func New(cfg *Config) *Server {
	ech := echo.New()
	ech.Server.ReadTimeout = cfg.ReadTimeout
	ech.Server.WriteTimeout = cfg.WriteTimeout
	ech.HideBanner = true
	ech.HidePort = true

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	logger = logger.With().Str("service_name", "metric").Logger()

	ech.Use(requestLogger(logger))

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	ech.GET(statusPath, func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]any{"status": "ok"})
	})

	ech.GET(metricsPath, echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer,
	}))

	gracePeriod := cfg.GracePeriod
	if gracePeriod <= 0 {
		gracePeriod = defaultGracePeriod
	}

	return &Server{
		gracePeriod: gracePeriod,
		address:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		echo:        ech,
		logger:      logger,
	}
}

// Start serves until Stop is called.
func (s *Server) Start(_ context.Context) error {
	s.logger.Info().Str("address", s.address).Msg("Starting metrics server")

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.gracePeriod)
	defer cancel()

	s.logger.Info().Msg("Initiating graceful shutdown of metrics server")

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to gracefully shut down metrics server")

		return err
	}

	s.logger.Info().Msg("Metrics server shutdown complete")

	return nil
}

func (s *Server) Name() string {
	return "metric"
}

// Addr returns the bound address once Start is listening, or nil.
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}

func (s *Server) Handler() http.Handler {
	return s.echo
}
