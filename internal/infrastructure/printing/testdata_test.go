package printing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/stretchr/testify/require"
)

var (
	printStamp = shared.StampAt("clerk", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	company    = CompanyInfo{Name: "Acme Rentals", Currency: "USD"}
)

type fixture struct {
	header *trade.TransactionHeader
	item   inventory.Item
	unit   inventory.InventoryUnit
	labels Labels
}

func newRentalFixture(t *testing.T) fixture {
	t.Helper()
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	h, err := trade.NewTransaction(trade.NewTransactionInput{
		Number:          "RNT-20260401-0007",
		Type:            trade.TransactionTypeRental,
		CustomerID:      uuid.New(),
		LocationID:      uuid.New(),
		RentalStartDate: &start,
		RentalEndDate:   &end,
	}, printStamp)
	require.NoError(t, err)

	item := inventory.Item{Code: "CAM-001", Name: "Cinema camera"}
	item.ID = uuid.New()
	unit := inventory.InventoryUnit{Code: "CAM-001-U3", ItemID: item.ID}
	unit.ID = uuid.New()

	period, periodUnit := 3, trade.PeriodDay
	_, err = h.AddLine(trade.LineInput{
		Type:              trade.LineTypeProduct,
		ItemID:            &item.ID,
		InventoryUnitID:   &unit.ID,
		Quantity:          1,
		UnitPrice:         valueobject.MustMoney("1250"),
		RentalPeriodValue: &period,
		RentalPeriodUnit:  &periodUnit,
		RentalStartDate:   &start,
		RentalEndDate:     &end,
	}, printStamp)
	require.NoError(t, err)

	return fixture{
		header: h,
		item:   item,
		unit:   unit,
		labels: Labels{
			Items: map[uuid.UUID]inventory.Item{item.ID: item},
			Units: map[uuid.UUID]inventory.InventoryUnit{unit.ID: unit},
		},
	}
}

func newReturn(f fixture) *rental.RentalReturn {
	minor := inventory.ConditionFair
	processedBy := "inspector"
	r := &rental.RentalReturn{
		Number:             "RET-20260406-0001",
		TransactionID:      f.header.ID,
		CustomerID:         f.header.CustomerID,
		LocationID:         f.header.LocationID,
		ReturnDate:         time.Date(2026, 4, 6, 10, 0, 0, 0, time.UTC),
		ExpectedReturnDate: time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC),
		Type:               rental.ReturnTypeFull,
		Status:             rental.ReturnCompleted,
		ProcessedBy:        &processedBy,
		TotalLateFee:       valueobject.MustMoney("80"),
		TotalDamageFee:     valueobject.MustMoney("150"),
		DepositAmount:      valueobject.MustMoney("500"),
		DepositRelease:     valueobject.MustMoney("500"),
		DepositWithheld:    valueobject.MustMoney("230"),
		TotalRefundAmount:  valueobject.MustMoney("270"),
		Lines: []rental.ReturnLine{{
			LineNumber:        1,
			InventoryUnitID:   f.unit.ID,
			ItemID:            f.item.ID,
			ReturnedQuantity:  valueobject.MustQuantity(1),
			Condition:         &minor,
			DamageLevel:       rental.DamageMinor,
			DamageDescription: "scratched top plate",
			Status:            rental.LineProcessed,
			LateFee:           valueobject.MustMoney("80"),
			DamageFee:         valueobject.MustMoney("120"),
			CleaningFee:       valueobject.MustMoney("30"),
		}},
	}
	r.ID = uuid.New()
	return r
}
