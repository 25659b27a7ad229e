package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the GORM span plugin
type DBTracingConfig struct {
	Enabled         bool
	DBName          string
	SlowQueryThresh time.Duration
	// TracerProvider overrides the global provider; tests set it
	TracerProvider trace.TracerProvider
}

type queryStartKey struct{}

type gormHookFunc interface {
	Register(name string, fn func(*gorm.DB)) error
}

// RegisterDBTracing installs otelgorm on db and adds callbacks that mark
// failed and slow statements on the current span. Query variables are never
// attached, since they carry customer names and amounts.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("database tracing disabled")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithoutQueryVariables()}
	if cfg.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(cfg.DBName))
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm plugin: %w", err)
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { markStatement(tx, cfg.SlowQueryThresh) }

	// The after hooks run before otelgorm ends the span
	cb := db.Callback()
	hooks := []struct {
		callback gormHookFunc
		hook     func(*gorm.DB)
		name     string
	}{
		{cb.Create().Before("gorm:create"), before, "before_create"},
		{cb.Create().After("gorm:create").Before("otel:after:create"), after, "after_create"},
		{cb.Query().Before("gorm:query"), before, "before_query"},
		{cb.Query().After("gorm:query").Before("otel:after:query"), after, "after_query"},
		{cb.Update().Before("gorm:update"), before, "before_update"},
		{cb.Update().After("gorm:update").Before("otel:after:update"), after, "after_update"},
		{cb.Delete().Before("gorm:delete"), before, "before_delete"},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), after, "after_delete"},
		{cb.Row().Before("gorm:row"), before, "before_row"},
		{cb.Row().After("gorm:row").Before("otel:after:row"), after, "after_row"},
		{cb.Raw().Before("gorm:raw"), before, "before_raw"},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), after, "after_raw"},
	}
	for _, h := range hooks {
		if err := h.callback.Register("cash_timing:"+h.name, h.hook); err != nil {
			return fmt.Errorf("failed to register %s callback: %w", h.name, err)
		}
	}

	logger.Info("database tracing enabled", zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}

func markStatement(tx *gorm.DB, slow time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))

	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
