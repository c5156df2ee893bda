package rental

import (
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
)

// Fallback damage fees used when no estimate has been recorded
var defaultDamageFees = map[DamageLevel]valueobject.Money{
	DamageNone:      valueobject.Zero(),
	DamageMinor:     valueobject.MustMoney("50.00"),
	DamageModerate:  valueobject.MustMoney("150.00"),
	DamageMajor:     valueobject.MustMoney("300.00"),
	DamageTotalLoss: valueobject.MustMoney("500.00"),
}

// SuggestDamageFee maps a damage level to a fee. TOTAL_LOSS uses the
// replacement estimate, other damaged levels the repair estimate; a missing
// or zero estimate falls back to the tier default.
func SuggestDamageFee(level DamageLevel, repairEstimate, replacementEstimate *valueobject.Money) valueobject.Money {
	estimate := repairEstimate
	if level == DamageTotalLoss {
		estimate = replacementEstimate
	}
	if level.IsDamaged() && estimate != nil && estimate.IsPositive() {
		return *estimate
	}
	return defaultDamageFees[level]
}

// CalculateLateFee is returned quantity × daily rate × days late, or zero
// when waived.
func CalculateLateFee(returnedQty int64, dailyRate valueobject.Money, daysLate int, waived bool) valueobject.Money {
	if waived || daysLate <= 0 || returnedQty <= 0 {
		return valueobject.Zero()
	}
	return dailyRate.MulInt(returnedQty).MulInt(int64(daysLate))
}

// RefundFor is max(release - late - damage, 0)
func RefundFor(depositRelease, lateFees, damageFees valueobject.Money) valueobject.Money {
	return depositRelease.Sub(lateFees).Sub(damageFees).ClampZero()
}
