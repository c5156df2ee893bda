package rental

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInspection(t *testing.T) *InspectionReport {
	t.Helper()
	r, err := NewInspectionReport(NewInspectionInput{ReturnID: uuid.New(), InventoryUnitID: uuid.New()}, testStamp)
	require.NoError(t, err)
	return r
}

func TestNewInspectionReport(t *testing.T) {
	r := newTestInspection(t)
	assert.Equal(t, InspectionPending, r.Status)
	assert.Equal(t, InspectionReturn, r.Type)
	assert.Equal(t, "clerk", r.InspectorID)
	assert.Equal(t, DamageNone, r.DamageLevel)

	_, err := NewInspectionReport(NewInspectionInput{InventoryUnitID: uuid.New()}, testStamp)
	assert.Error(t, err)
}

func TestInspectionReport_Lifecycle(t *testing.T) {
	r := newTestInspection(t)
	require.NoError(t, r.Start(testStamp))
	assert.Equal(t, InspectionInProgress, r.Status)

	repair := valueobject.MustMoney("120")
	require.NoError(t, r.UpdateFindings(Findings{
		DamageLevel: DamageModerate, DamageDescription: "cracked casing", RepairEstimate: &repair,
	}, testStamp))
	assert.Equal(t, "120.00", r.SuggestedDamageFee().String())

	require.NoError(t, r.AttachEvidence("inspections/a.jpg", testStamp))
	require.NoError(t, r.AttachEvidence("inspections/a.jpg", testStamp))
	assert.Len(t, r.EvidenceKeys, 1)
	assert.True(t, r.HasEvidence("inspections/a.jpg"))

	require.NoError(t, r.Complete(testStamp))
	assert.Equal(t, InspectionCompleted, r.Status)
	require.NotNil(t, r.CompletedAt)
	assert.Len(t, r.GetDomainEvents(), 1)

	t.Run("completed inspections are frozen", func(t *testing.T) {
		err := r.Complete(testStamp)
		assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
		assert.Error(t, r.Fail("oops", testStamp))
		assert.Error(t, r.UpdateFindings(Findings{DamageLevel: DamageNone}, testStamp))
		assert.Error(t, r.AttachEvidence("inspections/b.jpg", testStamp))
	})
}

func TestInspectionReport_FailAndRetry(t *testing.T) {
	r := newTestInspection(t)
	assert.Error(t, r.Fail("  ", testStamp))
	require.NoError(t, r.Fail("lighting too poor", testStamp))
	assert.Equal(t, InspectionFailed, r.Status)
	assert.Contains(t, r.Notes, "lighting too poor")

	require.NoError(t, r.Fail("still too dark", testStamp))
	require.NoError(t, r.Start(testStamp))
	require.NoError(t, r.Complete(testStamp))
}

func TestInspectionReport_DescriptionRequired(t *testing.T) {
	r := newTestInspection(t)
	err := r.UpdateFindings(Findings{DamageLevel: DamageMajor}, testStamp)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	negative := valueobject.MustMoney("-1")
	err = r.UpdateFindings(Findings{DamageLevel: DamageMinor, DamageDescription: "dent", RepairEstimate: &negative}, testStamp)
	assert.Error(t, err)
}

func TestInspectionReport_Assessment(t *testing.T) {
	r := newTestInspection(t)
	replacement := valueobject.MustMoney("950")
	require.NoError(t, r.UpdateFindings(Findings{
		DamageLevel: DamageTotalLoss, DamageDescription: "destroyed", ReplacementEstimate: &replacement,
	}, testStamp))

	ret := newTestReturn(t, expected, "1000")
	line, err := ret.AssessDamage(ret.Lines[0].ID, r.Assessment(), testStamp)
	require.NoError(t, err)
	assert.Equal(t, "950.00", line.DamageFee.String())
	assert.Equal(t, "50.00", ret.TotalRefundAmount.String())
}
