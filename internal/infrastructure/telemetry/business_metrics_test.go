package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

type fakeRentalState struct {
	overdue  int64
	units    map[string]int64
	lowStock int64
	err      error
	asOf     time.Time
}

func (f *fakeRentalState) CountOverdueRentals(_ context.Context, asOf time.Time) (int64, error) {
	f.asOf = asOf
	return f.overdue, f.err
}

func (f *fakeRentalState) CountUnitsByStatus(context.Context) (map[string]int64, error) {
	return f.units, f.err
}

func (f *fakeRentalState) CountLowStockLevels(context.Context) (int64, error) {
	return f.lowStock, f.err
}

var testStamp = shared.Stamp{Actor: "clerk", At: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}

func base(eventType, aggType string) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, aggType, uuid.New(), testStamp)
}

func newBusinessMetrics(t *testing.T, state telemetry.RentalStateProvider) (*telemetry.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader, mp := newTestMeter(t)
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  mp.Meter("test"),
		Logger: zaptest.NewLogger(t),
		Clock:  shared.FixedClock{At: testStamp.At},
		State:  state,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bm.Stop() })
	return bm, reader
}

func float64Sum(t *testing.T, reader *sdkmetric.ManualReader, name string) float64 {
	t.Helper()
	m, ok := collect(t, reader, name)
	require.True(t, ok, "metric %s not collected", name)
	var total float64
	for _, dp := range m.Data.(metricdata.Sum[float64]).DataPoints {
		total += dp.Value
	}
	return total
}

func gaugeValue(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) (int64, bool) {
	t.Helper()
	m, ok := collect(t, reader, name)
	if !ok {
		return 0, false
	}
	want := attribute.NewSet(attrs...)
	for _, dp := range m.Data.(metricdata.Gauge[int64]).DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value, true
		}
	}
	return 0, false
}

func TestNewBusinessMetrics_RequiresMeter(t *testing.T) {
	_, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestBusinessMetrics_EventTypes(t *testing.T) {
	bm, _ := newBusinessMetrics(t, nil)
	assert.ElementsMatch(t, []string{
		trade.EventTypeTransactionCreated,
		trade.EventTypeTransactionCancelled,
		trade.EventTypePaymentApplied,
		trade.EventTypeRefundProcessed,
		rental.EventTypeReturnOpened,
		rental.EventTypeReturnFinalized,
		rental.EventTypeInspectionCompleted,
		inventory.EventTypeStockBelowThreshold,
	}, bm.EventTypes())
}

func TestBusinessMetrics_Handle(t *testing.T) {
	bm, reader := newBusinessMetrics(t, nil)
	ctx := context.Background()

	events := []shared.DomainEvent{
		&trade.TransactionCreatedEvent{
			BaseDomainEvent: base(trade.EventTypeTransactionCreated, trade.AggregateTypeTransaction),
			Number:          "RNT-0001",
			Type:            trade.TransactionTypeRental,
		},
		&trade.TransactionCreatedEvent{
			BaseDomainEvent: base(trade.EventTypeTransactionCreated, trade.AggregateTypeTransaction),
			Number:          "RNT-0002",
			Type:            trade.TransactionTypeRental,
		},
		&trade.TransactionCancelledEvent{
			BaseDomainEvent: base(trade.EventTypeTransactionCancelled, trade.AggregateTypeTransaction),
			Number:          "RNT-0002",
		},
		&trade.PaymentAppliedEvent{
			BaseDomainEvent: base(trade.EventTypePaymentApplied, trade.AggregateTypeTransaction),
			Amount:          valueobject.NewMoneyFromInt(120),
			Method:          trade.PaymentMethodCash,
		},
		&trade.RefundProcessedEvent{
			BaseDomainEvent: base(trade.EventTypeRefundProcessed, trade.AggregateTypeTransaction),
			Amount:          valueobject.NewMoneyFromInt(20),
		},
		&rental.ReturnOpenedEvent{
			BaseDomainEvent: base(rental.EventTypeReturnOpened, rental.AggregateTypeReturn),
			Type:            rental.ReturnTypeFull,
			IsLate:          true,
		},
		&rental.ReturnFinalizedEvent{
			BaseDomainEvent: base(rental.EventTypeReturnFinalized, rental.AggregateTypeReturn),
			TotalLateFee:    valueobject.NewMoneyFromInt(15),
			TotalDamageFee:  valueobject.NewMoneyFromInt(40),
		},
		&rental.InspectionCompletedEvent{
			BaseDomainEvent: base(rental.EventTypeInspectionCompleted, rental.AggregateTypeInspection),
			DamageLevel:     rental.DamageMinor,
		},
		&inventory.StockBelowThresholdEvent{
			BaseDomainEvent: base(inventory.EventTypeStockBelowThreshold, inventory.AggregateTypeStockLevel),
		},
		&inventory.ItemCreatedEvent{
			BaseDomainEvent: base(inventory.EventTypeItemCreated, inventory.AggregateTypeItem),
		},
	}
	for _, e := range events {
		require.NoError(t, bm.Handle(ctx, e))
	}

	assert.Equal(t, int64(2), int64Sum(t, reader, "rental_transactions_created_total",
		telemetry.AttrTransactionType.String(string(trade.TransactionTypeRental))))
	assert.Equal(t, int64(1), int64Sum(t, reader, "rental_transactions_cancelled_total"))
	assert.Equal(t, int64(1), int64Sum(t, reader, "rental_payments_total",
		telemetry.AttrPaymentMethod.String("CASH")))
	assert.Equal(t, int64(1), int64Sum(t, reader, "rental_returns_opened_total",
		telemetry.AttrReturnType.String("FULL"), telemetry.AttrLate.Bool(true)))
	assert.Equal(t, int64(1), int64Sum(t, reader, "rental_returns_finalized_total"))
	assert.Equal(t, int64(1), int64Sum(t, reader, "rental_inspections_completed_total",
		telemetry.AttrDamageLevel.String("MINOR")))
	assert.Equal(t, int64(1), int64Sum(t, reader, "rental_stock_below_threshold_total"))

	assert.InDelta(t, 120.0, float64Sum(t, reader, "rental_payment_amount_total"), 1e-9)
	assert.InDelta(t, 20.0, float64Sum(t, reader, "rental_refund_amount_total"), 1e-9)
	assert.InDelta(t, 15.0, float64Sum(t, reader, "rental_late_fee_amount_total"), 1e-9)
	assert.InDelta(t, 40.0, float64Sum(t, reader, "rental_damage_fee_amount_total"), 1e-9)
}

func TestBusinessMetrics_StateGauges(t *testing.T) {
	state := &fakeRentalState{
		overdue:  3,
		units:    map[string]int64{"AVAILABLE": 7, "RENTED": 2},
		lowStock: 1,
	}
	_, reader := newBusinessMetrics(t, state)

	overdue, ok := gaugeValue(t, reader, "rental_overdue_transactions")
	require.True(t, ok)
	assert.Equal(t, int64(3), overdue)
	assert.Equal(t, testStamp.At, state.asOf)

	rented, ok := gaugeValue(t, reader, "rental_units", telemetry.AttrUnitStatus.String("RENTED"))
	require.True(t, ok)
	assert.Equal(t, int64(2), rented)

	low, ok := gaugeValue(t, reader, "rental_low_stock_levels")
	require.True(t, ok)
	assert.Equal(t, int64(1), low)
}

func TestBusinessMetrics_StateErrorsSkipObservation(t *testing.T) {
	_, reader := newBusinessMetrics(t, &fakeRentalState{err: errors.New("db down")})

	_, ok := gaugeValue(t, reader, "rental_overdue_transactions")
	assert.False(t, ok)
}
