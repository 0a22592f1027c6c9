package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/nodeops/internal/domain/config"
	"github.com/felixgeelhaar/nodeops/internal/domain/npm"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"operation failed", errOperationFailed, ExitFailure},
		{"cancelled", context.Canceled, ExitCancelled},
		{"wrapped cancellation", fmt.Errorf("waiting: %w", context.Canceled), ExitCancelled},
		{"deadline", context.DeadlineExceeded, ExitCancelled},
		{"npm not found", &npm.ExecutionFailure{Message: "not found", Err: npm.ErrNpmNotFound}, ExitFatal},
		{"config", config.NewConfigNotFoundError("x.yaml"), ExitFatal},
		{"other", errors.New("boom"), ExitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}
