package notifybus

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// loggerAdapter routes watermill's internal logging through zerolog. Watermill's info
// level is chatty per subscription, so it goes to debug.
type loggerAdapter struct {
	logger zerolog.Logger
}

var _ watermill.LoggerAdapter = loggerAdapter{}

func newLoggerAdapter(logger zerolog.Logger) watermill.LoggerAdapter {
	return loggerAdapter{logger: logger}
}

func (l loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error().Err(err).Fields(map[string]any(fields)).Msg(msg)
}

func (l loggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.logger.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (l loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (l loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.logger.Trace().Fields(map[string]any(fields)).Msg(msg)
}

func (l loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return loggerAdapter{logger: l.logger.With().Fields(map[string]any(fields)).Logger()}
}
