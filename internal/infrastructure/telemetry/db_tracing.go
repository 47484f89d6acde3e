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

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // bind variables in span statements, dev only
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DefaultDBTracingConfig returns the disabled defaults: 200ms slow query
// threshold on postgresql.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{SlowQueryThresh: 200 * time.Millisecond, DBSystem: "postgresql"}
}

// DBTracingPlugin adds otelgorm spans plus slow query flags to a GORM db.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin fills zero fields of cfg from DefaultDBTracingConfig.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	def := DefaultDBTracingConfig()
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = def.SlowQueryThresh
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = def.DBSystem
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs otelgorm and the timing callbacks on db.
// Registering twice returns gorm.ErrRegistered.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerTiming(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.String("db_system", p.config.DBSystem),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.Bool("log_full_sql", p.config.LogFullSQL),
	)
	return nil
}

// registrar is satisfied by the builder GORM returns from Before and After.
type registrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// registerTiming brackets each built-in GORM step with a start stamp and
// the span annotation.
func (p *DBTracingPlugin) registerTiming(db *gorm.DB) error {
	cb := db.Callback()
	chains := []struct {
		op            string
		before, after registrar
	}{
		{"create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create")},
		{"query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query")},
		{"update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update")},
		{"delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete")},
		{"row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row")},
		{"raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw")},
	}
	var errs []error
	for _, c := range chains {
		errs = append(errs,
			c.before.Register("lookbook_timing:before_"+c.op, markQueryStart),
			c.after.Register("lookbook_timing:after_"+c.op, p.afterQuery),
		)
	}
	return errors.Join(errs...)
}

type queryStartKey struct{}

// WithQueryStartTime stamps ctx with the current time for slow query detection.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartKey{}, time.Now())
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = WithQueryStartTime(db.Statement.Context)
	}
}

// afterQuery annotates the recording span in the statement context with
// table, row count, failure and slowness. Not-found is not a failure.
func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	stmt := db.Statement
	if stmt.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", stmt.Table))
	}
	if stmt.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", stmt.RowsAffected))
	}
	if err := db.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	started, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(started)
	if elapsed <= p.config.SlowQueryThresh {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
	)
	span.AddEvent("slow_query_warning", trace.WithAttributes(
		attribute.Int64("duration_ms", elapsed.Milliseconds()),
		attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
	))
}
