package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/docsync/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(originalLevel)
	})

	buf := &bytes.Buffer{}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logging.SetDefault(zerolog.New(buf).Level(zerolog.InfoLevel))

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")

	output := buf.String()
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warning message")
	assert.NotContains(t, output, "debug message")
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithOperation(ctx, "refresh", "op-123")
	ctx = logging.WithRecord(ctx, "row-7")
	ctx = logging.WithEndpoint(ctx, "https://script.example/exec")

	logging.FromContext(ctx).Info().Msg("snapshot published")

	testLogger.AssertContains(t, `"operation":"refresh"`)
	testLogger.AssertContains(t, `"operation_id":"op-123"`)
	testLogger.AssertContains(t, `"identity":"row-7"`)
	testLogger.AssertContains(t, "script.example")
	testLogger.AssertContains(t, "snapshot published")
}

func TestRequestID(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRequestID(ctx, "req-1")

	assert.Equal(t, "req-1", logging.RequestID(ctx))
	logging.Ctx(ctx).Info().Msg("handled")
	testLogger.AssertContains(t, `"request_id":"req-1"`)

	assert.Empty(t, logging.RequestID(context.Background()))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
}

func TestCaptureLoggingForTest(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	logging.Error().Str("identity", "row-1").Msg("write failed")

	assert.Len(t, captured.Lines(), 1)
	captured.AssertContains(t, "write failed")
	captured.AssertNotContains(t, "success")
}
