// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctx := New(context.Background(), logger)
		assert.Same(t, logger, Logger(ctx))
	})

	t.Run("with nil logger should use default", func(t *testing.T) {
		ctx := New(context.Background(), nil)
		assert.Same(t, DefaultLogger, Logger(ctx))
	})
}

func TestLoggerMissingFromContext(t *testing.T) {
	assert.Same(t, DefaultLogger, Logger(context.Background()))
}

func TestContextHelpers(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := New(context.Background(), logger)

	Debug(ctx, "debug message", "key", "value")
	Info(ctx, "info message")
	Warn(ctx, "warn message")
	Error(ctx, "error message")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "debug message")
	assert.Contains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
	assert.Contains(t, out, "key=value")
}
