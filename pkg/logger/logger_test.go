package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_Environments(t *testing.T) {
	require.NoError(t, Init("production"))
	assert.NotNil(t, Get())

	require.NoError(t, Init("development"))
	assert.NotNil(t, Get())
}

func TestWithContext_AddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log = zap.New(core)
	defer func() { log = nil }()

	ctx := ContextWithCorrelationID(context.Background(), "req-123")
	ctx = ContextWithUserID(ctx, "user-1")

	WithContext(ctx).Info("listing created")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-123", fields["correlation_id"])
	assert.Equal(t, "user-1", fields["user_id"])
}

func TestWithContext_NoFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log = zap.New(core)
	defer func() { log = nil }()

	WithContext(context.Background()).Info("plain")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, "", CorrelationIDFromContext(context.Background()))
}
