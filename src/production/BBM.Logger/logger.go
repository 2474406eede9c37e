package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	config "gitlab.com/maplesense1/bbm.monitor_server/src/production/BBM.Config"
)

// Logger wraps zerolog.Logger with the fields this server tags its logs with
type Logger struct {
	*zerolog.Logger
}

// NewLogger creates the process logger and installs it as zerolog's global one.
// Unknown levels fall back to info.
func NewLogger(cfg *config.LoggingConfig) *Logger {
	out := io.Writer(os.Stdout)
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	log.Logger = build(cfg, out)
	return &Logger{&log.Logger}
}

func build(cfg *config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	ctx := zerolog.New(out).With().Timestamp().Str("service", "baby-monitor")
	if cfg.EnableCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	l := zerolog.Nop()
	return &Logger{&l}
}

func (l *Logger) with(key, value string) *Logger {
	logger := l.Logger.With().Str(key, value).Logger()
	return &Logger{&logger}
}

// WithComponent tags logs with the subsystem that wrote them
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithRequestID tags logs with the X-Request-ID of the HTTP request
func (l *Logger) WithRequestID(requestID string) *Logger {
	if requestID == "" {
		return l
	}
	return l.with("request_id", requestID)
}

// WithDevice tags logs with the detector or sensor board they concern
func (l *Logger) WithDevice(deviceID string) *Logger {
	return l.with("device_id", deviceID)
}

// FatalWithError logs and exits with status 1
func (l *Logger) FatalWithError(err error, msg string) {
	l.Logger.Fatal().Err(err).Msg(msg)
}

func (l *Logger) ErrorWithError(err error, msg string) {
	l.Logger.Error().Err(err).Msg(msg)
}

func (l *Logger) Warn(msg string) {
	l.Logger.Warn().Msg(msg)
}

func (l *Logger) Info(msg string) {
	l.Logger.Info().Msg(msg)
}
