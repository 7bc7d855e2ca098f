package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/slatebar/slate/logging"
)

// LoggerOption represents a function that configures a logger
type LoggerOption func(*logrus.Logger)

// WithOutput sets the logger output
func WithOutput(w io.Writer) LoggerOption {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// WithLevel sets the log level
func WithLevel(level logrus.Level) LoggerOption {
	return func(l *logrus.Logger) {
		l.SetLevel(level)
	}
}

// WithFormatter sets the log formatter
func WithFormatter(formatter logrus.Formatter) LoggerOption {
	return func(l *logrus.Logger) {
		l.SetFormatter(formatter)
	}
}

// NewLogger creates a logger for interactive command output: stderr sink,
// timestamp-free text format, color when stderr is a terminal. The daemons
// use the logging package's file-backed loggers instead.
func NewLogger(opts ...LoggerOption) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logging.TextFormatter{
		Config: logging.FormatConfig{DisableTimestamp: true},
		Color:  isatty.IsTerminal(os.Stderr.Fd()),
	})

	for _, opt := range opts {
		opt(logger)
	}

	return logger
}
