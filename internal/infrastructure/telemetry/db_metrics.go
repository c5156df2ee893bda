package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rentalcore/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetrics records query counts, latency and slow queries, and observes
// the connection pool on every collection cycle.
type DBMetrics struct {
	queryTotal     *Counter
	queryErrors    *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	slowThreshold  time.Duration
	registration   metric.Registration
}

// NewDBMetrics creates the query instruments and, when sqlDB is non-nil,
// observable gauges over its pool statistics.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, slowThreshold time.Duration) (*DBMetrics, error) {
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowQueryThreshold
	}
	m := &DBMetrics{slowThreshold: slowThreshold}

	var err error
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.queryErrors, err = NewCounter(meter, "db_query_errors_total", "Failed database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the slow-query threshold", "{query}"); err != nil {
		return nil, err
	}
	m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	if sqlDB != nil {
		if err := m.observePool(meter, sqlDB); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *DBMetrics) observePool(meter metric.Meter, sqlDB *sql.DB) error {
	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("create pool gauge: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("create pool gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return fmt.Errorf("create pool counter: %w", err)
	}

	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, conns, maxOpen, waits)
	if err != nil {
		return fmt.Errorf("register pool callback: %w", err)
	}
	return nil
}

// RecordQuery records one finished statement
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, elapsed time.Duration, failed bool) {
	if table == "" {
		table = "unknown"
	}
	op := AttrDBOperation.String(operation)
	m.queryTotal.Inc(ctx, op)
	m.queryDuration.RecordDuration(ctx, elapsed, op)
	if failed {
		m.queryErrors.Inc(ctx, op, AttrDBTable.String(table))
	}
	if elapsed > m.slowThreshold {
		m.slowQueryTotal.Inc(ctx, op, AttrDBTable.String(table))
	}
}

// Stop unregisters the pool callback
func (m *DBMetrics) Stop() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

// RegisterDBMetrics attaches query metrics callbacks to db. It returns nil
// when metrics export is off.
func RegisterDBMetrics(db *gorm.DB, mp *MeterProvider, cfg config.TelemetryConfig, logger *zap.Logger) (*DBMetrics, error) {
	if mp == nil || !mp.IsEnabled() {
		logger.Debug("database metrics disabled")
		return nil, nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	m, err := NewDBMetrics(mp.Meter(MeterName), sqlDB, cfg.DBSlowQueryThresh)
	if err != nil {
		return nil, err
	}
	if err := m.attach(db); err != nil {
		return nil, err
	}
	logger.Info("database metrics registered")
	return m, nil
}

func (m *DBMetrics) attach(db *gorm.DB) error {
	for _, h := range gormHooks(db) {
		processor := h.operation
		if err := h.before("rental_metrics:before_"+processor, markQueryStart); err != nil {
			return err
		}
		record := func(db *gorm.DB) {
			elapsed, ok := queryElapsed(db)
			if !ok {
				return
			}
			op := operationOf(processor, db.Statement.SQL.String())
			m.RecordQuery(db.Statement.Context, op, db.Statement.Table, elapsed, db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound))
		}
		if err := h.after("rental_metrics:after_"+processor, record); err != nil {
			return err
		}
	}
	return nil
}
