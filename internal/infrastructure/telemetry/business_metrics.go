package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/domain/trade"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when BusinessMetrics is built without a meter
var ErrMeterNil = errors.New("business metrics: meter cannot be nil")

// RentalStateProvider answers the point-in-time questions behind the
// business gauges
type RentalStateProvider interface {
	CountOverdueRentals(ctx context.Context, asOf time.Time) (int64, error)
	CountUnitsByStatus(ctx context.Context) (map[string]int64, error)
	CountLowStockLevels(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig configures NewBusinessMetrics
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
	Clock  shared.Clock
	// State backs the observable gauges; nil leaves them unregistered
	State RentalStateProvider
}

// BusinessMetrics turns committed domain events into counters and observes
// rental state gauges at each collection. It subscribes to the event bus
// as a handler.
type BusinessMetrics struct {
	logger *zap.Logger
	clock  shared.Clock

	transactionsCreated  *Counter
	transactionsCanceled *Counter
	payments             *Counter
	paymentAmount        *FloatCounter
	refundAmount         *FloatCounter
	returnsOpened        *Counter
	returnsFinalized     *Counter
	lateFeeAmount        *FloatCounter
	damageFeeAmount      *FloatCounter
	inspections          *Counter
	stockAlerts          *Counter

	registration metric.Registration
}

// NewBusinessMetrics creates every business instrument
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{logger: cfg.Logger, clock: cfg.Clock}
	if bm.logger == nil {
		bm.logger = zap.NewNop()
	}
	if bm.clock == nil {
		bm.clock = shared.SystemClock{}
	}

	counters := []struct {
		dst               **Counter
		name, description string
		unit              string
	}{
		{&bm.transactionsCreated, "rental_transactions_created_total", "Transactions created by type", "{transaction}"},
		{&bm.transactionsCanceled, "rental_transactions_cancelled_total", "Transactions cancelled", "{transaction}"},
		{&bm.payments, "rental_payments_total", "Payments applied by method", "{payment}"},
		{&bm.returnsOpened, "rental_returns_opened_total", "Returns opened by type and lateness", "{return}"},
		{&bm.returnsFinalized, "rental_returns_finalized_total", "Returns completed", "{return}"},
		{&bm.inspections, "rental_inspections_completed_total", "Inspections completed by damage level", "{inspection}"},
		{&bm.stockAlerts, "rental_stock_below_threshold_total", "Stock level threshold alerts", "{alert}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	amounts := []struct {
		dst               **FloatCounter
		name, description string
	}{
		{&bm.paymentAmount, "rental_payment_amount_total", "Money received through applied payments"},
		{&bm.refundAmount, "rental_refund_amount_total", "Money refunded"},
		{&bm.lateFeeAmount, "rental_late_fee_amount_total", "Late fees assessed on finalized returns"},
		{&bm.damageFeeAmount, "rental_damage_fee_amount_total", "Damage fees assessed on finalized returns"},
	}
	for _, a := range amounts {
		counter, err := NewFloatCounter(cfg.Meter, a.name, a.description, "{currency}")
		if err != nil {
			return nil, err
		}
		*a.dst = counter
	}

	if cfg.State != nil {
		if err := bm.observeState(cfg.Meter, cfg.State); err != nil {
			return nil, err
		}
	}
	return bm, nil
}

func (bm *BusinessMetrics) observeState(meter metric.Meter, state RentalStateProvider) error {
	overdue, err := meter.Int64ObservableGauge("rental_overdue_transactions",
		metric.WithDescription("In-progress rentals past their end date"),
		metric.WithUnit("{transaction}"))
	if err != nil {
		return fmt.Errorf("create overdue gauge: %w", err)
	}
	units, err := meter.Int64ObservableGauge("rental_units",
		metric.WithDescription("Active serialized units by status"),
		metric.WithUnit("{unit}"))
	if err != nil {
		return fmt.Errorf("create units gauge: %w", err)
	}
	lowStock, err := meter.Int64ObservableGauge("rental_low_stock_levels",
		metric.WithDescription("Stock levels at or below their reorder point or minimum"),
		metric.WithUnit("{level}"))
	if err != nil {
		return fmt.Errorf("create low stock gauge: %w", err)
	}

	bm.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		if n, err := state.CountOverdueRentals(ctx, bm.clock.Now()); err != nil {
			bm.logger.Warn("collect overdue rentals", zap.Error(err))
		} else {
			o.ObserveInt64(overdue, n)
		}
		if counts, err := state.CountUnitsByStatus(ctx); err != nil {
			bm.logger.Warn("collect unit statuses", zap.Error(err))
		} else {
			for status, n := range counts {
				o.ObserveInt64(units, n, metric.WithAttributes(AttrUnitStatus.String(status)))
			}
		}
		if n, err := state.CountLowStockLevels(ctx); err != nil {
			bm.logger.Warn("collect low stock levels", zap.Error(err))
		} else {
			o.ObserveInt64(lowStock, n)
		}
		return nil
	}, overdue, units, lowStock)
	if err != nil {
		return fmt.Errorf("register business gauges: %w", err)
	}
	return nil
}

// EventTypes lists the events that move a business counter
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		trade.EventTypeTransactionCreated,
		trade.EventTypeTransactionCancelled,
		trade.EventTypePaymentApplied,
		trade.EventTypeRefundProcessed,
		rental.EventTypeReturnOpened,
		rental.EventTypeReturnFinalized,
		rental.EventTypeInspectionCompleted,
		inventory.EventTypeStockBelowThreshold,
	}
}

// Handle records one committed event. It never fails; metrics must not
// break event delivery.
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.TransactionCreatedEvent:
		bm.transactionsCreated.Inc(ctx, AttrTransactionType.String(string(e.Type)))
	case *trade.TransactionCancelledEvent:
		bm.transactionsCanceled.Inc(ctx)
	case *trade.PaymentAppliedEvent:
		method := AttrPaymentMethod.String(string(e.Method))
		bm.payments.Inc(ctx, method)
		bm.paymentAmount.Add(ctx, moneyFloat(e.Amount), method)
	case *trade.RefundProcessedEvent:
		bm.refundAmount.Add(ctx, moneyFloat(e.Amount))
	case *rental.ReturnOpenedEvent:
		bm.returnsOpened.Inc(ctx,
			AttrReturnType.String(string(e.Type)),
			AttrLate.Bool(e.IsLate),
		)
	case *rental.ReturnFinalizedEvent:
		bm.returnsFinalized.Inc(ctx)
		bm.lateFeeAmount.Add(ctx, moneyFloat(e.TotalLateFee))
		bm.damageFeeAmount.Add(ctx, moneyFloat(e.TotalDamageFee))
	case *rental.InspectionCompletedEvent:
		bm.inspections.Inc(ctx, AttrDamageLevel.String(string(e.DamageLevel)))
	case *inventory.StockBelowThresholdEvent:
		bm.stockAlerts.Inc(ctx)
	default:
		bm.logger.Debug("no business metric for event", zap.String("event_type", event.EventType()))
	}
	return nil
}

// Stop unregisters the gauge callback
func (bm *BusinessMetrics) Stop() error {
	if bm.registration == nil {
		return nil
	}
	return bm.registration.Unregister()
}

func moneyFloat(m valueobject.Money) float64 {
	f, _ := m.Decimal().Float64()
	return f
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
