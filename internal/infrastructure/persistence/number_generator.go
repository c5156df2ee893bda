package persistence

import (
	"context"
	"fmt"

	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNumberGenerator issues PREFIX-YYYYMMDD-NNNN numbers from the
// number_sequences table. The counter row is bumped with an upsert, so two
// units of work asking for the same prefix on the same day serialize on it.
type GormNumberGenerator struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormNumberGenerator creates a new GormNumberGenerator
func NewGormNumberGenerator(db *gorm.DB, clock shared.Clock) *GormNumberGenerator {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &GormNumberGenerator{db: db, clock: clock}
}

// Next returns the next number for prefix on the current day
func (g *GormNumberGenerator) Next(ctx context.Context, prefix string) (string, error) {
	now := g.clock.Now()
	day := now.UTC().Format("20060102")
	seq := models.NumberSequenceModel{Prefix: prefix, Day: day, LastValue: 1, UpdatedAt: now}

	err := g.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "prefix"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_value": gorm.Expr("number_sequences.last_value + 1"),
				"updated_at": now,
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "last_value"}}},
	).Create(&seq).Error
	if err != nil {
		return "", fmt.Errorf("failed to allocate %s number: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, day, seq.LastValue), nil
}

var _ shared.NumberGenerator = (*GormNumberGenerator)(nil)
