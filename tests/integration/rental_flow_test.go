package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/rentalcore/backend/internal/application/inventory"
	apprental "github.com/rentalcore/backend/internal/application/rental"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	apptrade "github.com/rentalcore/backend/internal/application/trade"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/infrastructure/persistence"
	"github.com/rentalcore/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flowNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type services struct {
	ctx        context.Context
	locationID uuid.UUID
	customerID uuid.UUID
	items      *appinventory.ItemService
	units      *appinventory.UnitService
	stock      *appinventory.StockService
	txns       *apptrade.TransactionService
	rentals    *apptrade.RentalService
	returns    *apprental.ReturnService
	audit      *appshared.AuditService
}

// newServices wires the application services over the Postgres repositories
// with a fresh location and customer, so tests can share one container.
func newServices(t *testing.T, tdb *TestDB) *services {
	t.Helper()
	clock := shared.FixedClock{At: flowNow}
	repos := persistence.NewRepositories(tdb.DB, clock)
	scope := persistence.NewGormTransactionScope(tdb.DB, clock)
	locations := persistence.NewGormLocationDirectory(tdb.DB)
	customers := persistence.NewGormCustomerDirectory(tdb.DB)

	s := &services{
		ctx:        testutil.ActorContext("clerk"),
		locationID: uuid.New(),
		customerID: uuid.New(),
	}
	tdb.CreateLocation(s.locationID, "LOC-"+s.locationID.String()[:6])
	tdb.CreateCustomer(s.customerID, true, false)

	invOpts := []appinventory.Option{appinventory.WithClock(clock)}
	tradeOpts := []apptrade.Option{apptrade.WithClock(clock), apptrade.WithCustomerDirectory(customers)}
	s.items = appinventory.NewItemService(scope, repos.ItemRepo, invOpts...)
	s.units = appinventory.NewUnitService(scope, repos.UnitRepo, locations, invOpts...)
	s.stock = appinventory.NewStockService(scope, repos.StockRepo, invOpts...)
	s.txns = apptrade.NewTransactionService(scope, repos.TransactionRepo, tradeOpts...)
	s.rentals = apptrade.NewRentalService(scope, tradeOpts...)
	s.returns = apprental.NewReturnService(scope, repos.ReturnRepo, repos.TransactionRepo, repos.ItemRepo, apprental.WithClock(clock))
	s.audit = appshared.NewAuditService(repos.AuditRepo)
	return s
}

func money(s string) valueobject.Money { return valueobject.MustMoney(s) }

func moneyPtr(s string) *valueobject.Money {
	m := money(s)
	return &m
}

// seedTents creates a tent item renting at 20.00 a day with a 100.00
// deposit, plus two units at the services' location
func (s *services) seedTents(t *testing.T) (uuid.UUID, []uuid.UUID) {
	t.Helper()
	code := "TENT-" + uuid.NewString()[:8]
	item, err := s.items.Create(s.ctx, appinventory.CreateItemRequest{
		Code:             code,
		Name:             "Tent",
		Type:             "RENTAL",
		PurchasePrice:    money("300.00"),
		RentalRatePerDay: moneyPtr("20.00"),
		SecurityDeposit:  money("100.00"),
		MinRentalDays:    1,
	})
	require.NoError(t, err)

	units := make([]uuid.UUID, 0, 2)
	for _, suffix := range []string{"-A", "-B"} {
		unit, err := s.units.Receive(s.ctx, appinventory.ReceiveUnitRequest{
			Code:       code + suffix,
			ItemID:     item.ID,
			LocationID: s.locationID,
		})
		require.NoError(t, err)
		units = append(units, unit.ID)
	}
	return item.ID, units
}

func (s *services) available(t *testing.T, itemID uuid.UUID) int64 {
	t.Helper()
	level, err := s.stock.Get(s.ctx, itemID, s.locationID)
	require.NoError(t, err)
	return level.QuantityAvailable
}

func TestRentalLifecycle_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	s := newServices(t, NewSharedTestDB(t))
	itemID, units := s.seedTents(t)
	assert.Equal(t, int64(2), s.available(t, itemID))

	tax := decimal.NewFromInt(10)
	booking, err := s.rentals.CreateBooking(s.ctx, apptrade.CreateBookingRequest{
		CustomerID:      s.customerID,
		LocationID:      s.locationID,
		RentalStartDate: testutil.Day(2024, 5, 2),
		RentalEndDate:   testutil.Day(2024, 5, 4),
		TaxRate:         &tax,
		Items:           []apptrade.BookingItem{{ItemID: itemID, UnitIDs: units}},
	})
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", booking.Status)
	assert.True(t, booking.TotalAmount.Equals(money("132.00")))
	assert.True(t, booking.DepositAmount.Equals(money("200.00")))
	assert.Equal(t, int64(0), s.available(t, itemID))

	// the number is unique per day and read back from Postgres
	found, err := s.txns.GetByNumber(s.ctx, booking.Number)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)
	require.Len(t, found.Lines, len(booking.Lines))

	_, err = s.rentals.Submit(s.ctx, booking.ID)
	require.NoError(t, err)
	_, err = s.rentals.Checkout(s.ctx, booking.ID, apptrade.PaymentRequest{Amount: money("132.00"), Method: "CASH"}, "")
	require.NoError(t, err)
	active, err := s.rentals.Pickup(s.ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "IN_PROGRESS", active.Status)

	unit, err := s.units.GetByID(s.ctx, units[0])
	require.NoError(t, err)
	assert.Equal(t, "RENTED", unit.Status)

	returnDate := testutil.Day(2024, 5, 4)
	ret, err := s.returns.Open(s.ctx, apprental.CreateReturnRequest{
		TransactionID: booking.ID,
		ReturnDate:    &returnDate,
		Units: []apprental.ReturnUnitRequest{
			{InventoryUnitID: units[0]},
			{InventoryUnitID: units[1]},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "FULL", ret.Type)
	assert.False(t, ret.IsLate)

	for _, line := range ret.Lines {
		ret, err = s.returns.ProcessLine(s.ctx, ret.ID, line.ID)
		require.NoError(t, err)
	}
	ret, err = s.returns.Finalize(s.ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", ret.Status)
	assert.True(t, ret.TotalRefundAmount.Equals(money("200.00")))
	assert.Equal(t, int64(2), s.available(t, itemID))

	txn, err := s.txns.GetByID(s.ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", txn.Status)

	ret, err = s.returns.ReleaseDeposit(s.ctx, ret.ID, apprental.ReleaseDepositRequest{})
	require.NoError(t, err)
	assert.NotNil(t, ret.DepositReleasedAt)

	after, err := s.txns.GetByID(s.ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", after.Status)
	assert.True(t, after.PaidAmount.Equals(txn.PaidAmount))

	entries, err := s.audit.ListForEntity(s.ctx, "TRANSACTION", booking.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, "clerk", e.Actor)
	}
}

func TestRentalBooking_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)

	t.Run("blacklisted customer is refused", func(t *testing.T) {
		s := newServices(t, tdb)
		itemID, _ := s.seedTents(t)
		tdb.CreateCustomer(s.customerID, true, true)

		_, err := s.rentals.CreateBooking(s.ctx, apptrade.CreateBookingRequest{
			CustomerID:      s.customerID,
			LocationID:      s.locationID,
			RentalStartDate: testutil.Day(2024, 5, 2),
			RentalEndDate:   testutil.Day(2024, 5, 4),
			Items:           []apptrade.BookingItem{{ItemID: itemID, Quantity: 1}},
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CUSTOMER_BLACKLISTED", domainErr.Code)
		assert.Equal(t, int64(2), s.available(t, itemID))
	})

	t.Run("failed booking rolls back reservations", func(t *testing.T) {
		s := newServices(t, tdb)
		itemID, _ := s.seedTents(t)

		_, err := s.rentals.CreateBooking(s.ctx, apptrade.CreateBookingRequest{
			CustomerID:      s.customerID,
			LocationID:      s.locationID,
			RentalStartDate: testutil.Day(2024, 5, 2),
			RentalEndDate:   testutil.Day(2024, 5, 4),
			Items:           []apptrade.BookingItem{{ItemID: itemID, Quantity: 3}},
		})
		assert.True(t, errors.Is(err, shared.ErrConflict))
		assert.Equal(t, int64(2), s.available(t, itemID))
	})

	t.Run("unknown location is refused on receipt", func(t *testing.T) {
		s := newServices(t, tdb)
		itemID, _ := s.seedTents(t)

		_, err := s.units.Receive(s.ctx, appinventory.ReceiveUnitRequest{
			Code:       "STRAY-" + uuid.NewString()[:8],
			ItemID:     itemID,
			LocationID: uuid.New(),
		})
		require.Error(t, err)
	})
}
