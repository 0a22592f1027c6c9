package logging

import (
	"context"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// DiscardLogger drops every entry. nodeops uses it for --quiet, where the
// exit code is the only output.
type DiscardLogger struct {
	level ports.Level
}

// NewDiscardLogger returns a DiscardLogger at Error level.
func NewDiscardLogger() *DiscardLogger {
	return &DiscardLogger{level: ports.LevelError}
}

func (*DiscardLogger) Debug(context.Context, string, ...ports.Field) {}
func (*DiscardLogger) Info(context.Context, string, ...ports.Field) {}
func (*DiscardLogger) Warn(context.Context, string, ...ports.Field) {}
func (*DiscardLogger) Error(context.Context, string, ...ports.Field) {}

// With returns l; there is nothing to attach fields to.
func (l *DiscardLogger) With(...ports.Field) ports.Logger { return l }

func (l *DiscardLogger) Level() ports.Level { return l.level }
func (l *DiscardLogger) SetLevel(level ports.Level) { l.level = level }

var _ ports.Logger = (*DiscardLogger)(nil)
