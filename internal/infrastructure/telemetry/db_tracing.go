package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// DBTracingConfig controls the spans emitted for database statements
type DBTracingConfig struct {
	// LogFullSQL keeps bound values in db.statement. Development only.
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db plus callbacks that annotate each
// statement span with rows affected and the table. Slow statements are flagged.
// The annotation runs before otelgorm's own after-callback ends the span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQueryThreshold
	}

	opts := []otelgorm.Option{}
	if cfg.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(cfg.DBName))
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		annotateSpan(tx, cfg.SlowQueryThresh)
	}

	cb := db.Callback()
	errs := []error{
		cb.Create().Before("gorm:create").Register("eshop_timing:before_create", before),
		cb.Query().Before("gorm:query").Register("eshop_timing:before_query", before),
		cb.Update().Before("gorm:update").Register("eshop_timing:before_update", before),
		cb.Delete().Before("gorm:delete").Register("eshop_timing:before_delete", before),
		cb.Row().Before("gorm:row").Register("eshop_timing:before_row", before),
		cb.Raw().Before("gorm:raw").Register("eshop_timing:before_raw", before),
		cb.Create().After("gorm:create").Before("otel:after_create").Register("eshop_timing:after_create", after),
		cb.Query().After("gorm:query").Before("otel:after_query").Register("eshop_timing:after_query", after),
		cb.Update().After("gorm:update").Before("otel:after_update").Register("eshop_timing:after_update", after),
		cb.Delete().After("gorm:delete").Before("otel:after_delete").Register("eshop_timing:after_delete", after),
		cb.Row().After("gorm:row").Before("otel:after_row").Register("eshop_timing:after_row", after),
		cb.Raw().After("gorm:raw").Before("otel:after_raw").Register("eshop_timing:after_raw", after),
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}

func annotateSpan(tx *gorm.DB, slowThreshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > slowThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
