// Package logging implements ports.Logger: a ConsoleLogger that renders npm
// output and operation progress in text or JSON, and a DiscardLogger for
// quiet runs.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// ConsoleLogger logs structured messages to the console through
// charmbracelet/log.
type ConsoleLogger struct {
	logger *log.Logger
}

type consoleConfig struct {
	out        io.Writer
	level      ports.Level
	jsonFormat bool
	timestamp  bool
}

// ConsoleLoggerOption configures the console logger.
type ConsoleLoggerOption func(*consoleConfig)

// WithOutput sets the output writer (default: os.Stderr).
func WithOutput(w io.Writer) ConsoleLoggerOption {
	return func(c *consoleConfig) {
		c.out = w
	}
}

// WithLevel sets the minimum log level (default: Info).
func WithLevel(level ports.Level) ConsoleLoggerOption {
	return func(c *consoleConfig) {
		c.level = level
	}
}

// WithJSONFormat enables JSON output format.
func WithJSONFormat(enabled bool) ConsoleLoggerOption {
	return func(c *consoleConfig) {
		c.jsonFormat = enabled
	}
}

// WithTimestamp includes a timestamp in log entries.
func WithTimestamp(enabled bool) ConsoleLoggerOption {
	return func(c *consoleConfig) {
		c.timestamp = enabled
	}
}

// NewConsoleLogger creates a new console logger.
func NewConsoleLogger(opts ...ConsoleLoggerOption) *ConsoleLogger {
	cfg := consoleConfig{
		out:       os.Stderr,
		level:     ports.LevelInfo,
		timestamp: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	formatter := log.TextFormatter
	if cfg.jsonFormat {
		formatter = log.JSONFormatter
	}

	logger := log.NewWithOptions(cfg.out, log.Options{
		ReportTimestamp: cfg.timestamp,
		TimeFormat:      "15:04:05.00",
		Level:           toCharmLevel(cfg.level),
		Formatter:       formatter,
	})
	logger.SetStyles(levelStyles())

	return &ConsoleLogger{logger: logger}
}

// levelStyles spells out level names in full, colored by severity.
func levelStyles() *log.Styles {
	styles := log.DefaultStyles()
	label := lipgloss.NewStyle().Bold(true)
	styles.Levels[log.DebugLevel] = label.SetString("DEBUG").Foreground(lipgloss.Color("63"))
	styles.Levels[log.InfoLevel] = label.SetString("INFO").Foreground(lipgloss.Color("86"))
	styles.Levels[log.WarnLevel] = label.SetString("WARN").Foreground(lipgloss.Color("192"))
	styles.Levels[log.ErrorLevel] = label.SetString("ERROR").Foreground(lipgloss.Color("204"))
	styles.Keys["run"] = lipgloss.NewStyle().Faint(true)
	return styles
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(_ context.Context, msg string, fields ...ports.Field) {
	l.logger.Debug(msg, keyvals(fields)...)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(_ context.Context, msg string, fields ...ports.Field) {
	l.logger.Info(msg, keyvals(fields)...)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(_ context.Context, msg string, fields ...ports.Field) {
	l.logger.Warn(msg, keyvals(fields)...)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(_ context.Context, msg string, fields ...ports.Field) {
	l.logger.Error(msg, keyvals(fields)...)
}

// With returns a new logger with additional fields.
func (l *ConsoleLogger) With(fields ...ports.Field) ports.Logger {
	return &ConsoleLogger{logger: l.logger.With(keyvals(fields)...)}
}

// Level returns the minimum log level.
func (l *ConsoleLogger) Level() ports.Level {
	return fromCharmLevel(l.logger.GetLevel())
}

// SetLevel sets the minimum log level.
func (l *ConsoleLogger) SetLevel(level ports.Level) {
	l.logger.SetLevel(toCharmLevel(level))
}

func keyvals(fields []ports.Field) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	kv := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

func toCharmLevel(level ports.Level) log.Level {
	switch level {
	case ports.LevelDebug:
		return log.DebugLevel
	case ports.LevelWarn:
		return log.WarnLevel
	case ports.LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func fromCharmLevel(level log.Level) ports.Level {
	switch {
	case level <= log.DebugLevel:
		return ports.LevelDebug
	case level == log.InfoLevel:
		return ports.LevelInfo
	case level == log.WarnLevel:
		return ports.LevelWarn
	default:
		return ports.LevelError
	}
}

// Ensure ConsoleLogger implements Logger.
var _ ports.Logger = (*ConsoleLogger)(nil)
