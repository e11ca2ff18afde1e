package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"voxelengine/internal/config"
)

// New builds the process logger described by cfg. Output goes to stderr.
func New(cfg config.LoggingConfig) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit writer.
func NewWithOutput(cfg config.LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging level: %w", err)
	}
	log := logrus.New()
	log.Out = out
	log.Level = level
	switch cfg.Format {
	case "", "text":
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		log.Formatter = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("logging format %q is not supported", cfg.Format)
	}
	return log, nil
}

// Discard returns a logger that drops every entry, for components built
// without one.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	log.Level = logrus.PanicLevel
	return log
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Discard()
	}
	return log
}
