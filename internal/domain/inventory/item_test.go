package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStamp = shared.StampAt("tester", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

func money(s string) *valueobject.Money {
	m := valueobject.MustMoney(s)
	return &m
}

func rentalItemInput() NewItemInput {
	return NewItemInput{
		Code: "tent-4p",
		Name: "Four person tent",
		Type: ItemTypeRental,
		Pricing: ItemPricing{
			PurchasePrice:    valueobject.MustMoney("300.00"),
			RentalRatePerDay: money("20.00"),
			SecurityDeposit:  valueobject.MustMoney("100.00"),
		},
		MinRentalDays: 1,
	}
}

func TestNewItem(t *testing.T) {
	t.Run("creates rental item with normalized code", func(t *testing.T) {
		item, err := NewItem(rentalItemInput(), testStamp)
		require.NoError(t, err)
		assert.Equal(t, "TENT-4P", item.Code)
		assert.Equal(t, ItemStatusActive, item.Status)
		assert.True(t, item.IsActive)
		assert.True(t, item.IsRentable())
		assert.False(t, item.IsSaleable())
		assert.Equal(t, "20.00", item.DailyRate().String())
		assert.Len(t, item.GetDomainEvents(), 1)
		assert.Len(t, item.PendingAudit(), 1)
	})

	t.Run("type determines mandatory prices", func(t *testing.T) {
		in := rentalItemInput()
		in.Pricing.RentalRatePerDay = nil
		_, err := NewItem(in, testStamp)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		in = rentalItemInput()
		in.Type = ItemTypeSale
		_, err = NewItem(in, testStamp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sale price")

		in.Pricing.SalePrice = money("500.00")
		in.Type = ItemTypeBoth
		item, err := NewItem(in, testStamp)
		require.NoError(t, err)
		assert.True(t, item.IsSaleable())
		assert.True(t, item.IsRentable())
	})

	t.Run("rejects negative prices", func(t *testing.T) {
		in := rentalItemInput()
		in.Pricing.SecurityDeposit = valueobject.MustMoney("-1")
		_, err := NewItem(in, testStamp)
		assert.Error(t, err)
	})

	t.Run("rejects bad codes", func(t *testing.T) {
		in := rentalItemInput()
		in.Code = "   "
		_, err := NewItem(in, testStamp)
		assert.Error(t, err)

		in.Code = "X123456789012345678901234567890123456789012345678901"
		_, err = NewItem(in, testStamp)
		assert.Error(t, err)
	})

	t.Run("max rental days must not be below min", func(t *testing.T) {
		in := rentalItemInput()
		in.MinRentalDays = 3
		maxDays := 2
		in.MaxRentalDays = &maxDays
		_, err := NewItem(in, testStamp)
		assert.Error(t, err)
	})
}

func TestItem_AllowsRentalDays(t *testing.T) {
	in := rentalItemInput()
	in.MinRentalDays = 2
	maxDays := 7
	in.MaxRentalDays = &maxDays
	item, err := NewItem(in, testStamp)
	require.NoError(t, err)

	assert.Error(t, item.AllowsRentalDays(1))
	assert.NoError(t, item.AllowsRentalDays(2))
	assert.NoError(t, item.AllowsRentalDays(7))
	assert.Error(t, item.AllowsRentalDays(8))
}

func TestItem_ChangeStatus(t *testing.T) {
	item, err := NewItem(rentalItemInput(), testStamp)
	require.NoError(t, err)

	require.NoError(t, item.ChangeStatus(ItemStatusInactive, testStamp))
	assert.False(t, item.IsRentable())
	require.NoError(t, item.ChangeStatus(ItemStatusDiscontinued, testStamp))

	err = item.ChangeStatus(ItemStatusActive, testStamp)
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	assert.Equal(t, ItemStatusDiscontinued, item.Status)
}

func TestItem_DeactivateBlocksUpdates(t *testing.T) {
	item, err := NewItem(rentalItemInput(), testStamp)
	require.NoError(t, err)
	require.NoError(t, item.Deactivate(testStamp))

	assert.Error(t, item.Deactivate(testStamp))
	assert.Error(t, item.UpdatePricing(item.Pricing, testStamp))
	assert.False(t, item.IsRentable())
}
