package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func sampledSpanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	logger, _ := observedLogger()

	assert.Same(t, logger, FromContext(WithContext(context.Background(), logger)))
	assert.NotNil(t, FromContext(context.Background()))

	wrongType := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(wrongType))
}

func TestContextFields(t *testing.T) {
	logger, logs := observedLogger()
	ctx := context.Background()

	ctx, _ = WithRequestID(ctx, logger, "req-1")
	ctx, _ = WithBranchID(ctx, logger, "branch-lima")
	ctx, enriched := WithUserID(ctx, logger, "cajero-7")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "branch-lima", GetBranchID(ctx))
	assert.Equal(t, "cajero-7", GetUserID(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	enriched.Info("entry recorded")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "cajero-7", logs.All()[0].ContextMap()["user_id"])

	empty := context.Background()
	assert.Empty(t, GetRequestID(empty))
	assert.Empty(t, GetBranchID(empty))
	assert.Empty(t, GetUserID(empty))
}

func TestTraceContext(t *testing.T) {
	logger, logs := observedLogger()

	assert.Empty(t, GetTraceID(context.Background()))
	assert.Same(t, logger, WithTraceContext(context.Background(), logger))

	ctx := sampledSpanContext(t)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))

	WithTraceContext(ctx, logger).Info("traced")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
}

func TestContextLogger_EnrichesEntries(t *testing.T) {
	logger, logs := observedLogger()

	ctx := sampledSpanContext(t)
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, BranchIDKey, "branch-arequipa")
	ctx = WithContext(ctx, logger)

	L(ctx).With(zap.String("session_id", "s-1")).Warn("cash discrepancy detected")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "branch-arequipa", fields["branch_id"])
	assert.Equal(t, "s-1", fields["session_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.NotContains(t, fields, "user_id")
}

func TestContextLogger_Levels(t *testing.T) {
	logger, logs := observedLogger()
	cl := WithLogger(context.Background(), logger)

	cl.Debug("d")
	cl.Info("i")
	cl.Warn("w")
	cl.Error("e")
	assert.Equal(t, 4, logs.Len())
	assert.NotNil(t, cl.Zap())
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() { cl.Info("nothing happens") })
}
