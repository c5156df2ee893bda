// Package testutil provides common test utilities for the rental backend:
// an in-memory repository set, event recorders, sqlmock-backed GORM
// connections and gin request helpers.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a new mock database for testing. It is closed when
// the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "Failed to open GORM connection")
	t.Cleanup(func() { _ = mockDB.Close() })

	return &MockDB{
		DB:    gormDB,
		Mock:  mock,
		SqlDB: mockDB,
	}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	err := m.Mock.ExpectationsWereMet()
	require.NoError(t, err, "Unmet database expectations")
}

// NewTestUUID generates a deterministic UUID from seed.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// TestLocationID returns the standard location used by service tests.
func TestLocationID() uuid.UUID {
	return NewTestUUID("test-location")
}

// TestCustomerID returns the standard customer used by service tests.
func TestCustomerID() uuid.UUID {
	return NewTestUUID("test-customer")
}

// ActorContext returns a background context carrying actor.
func ActorContext(actor string) context.Context {
	return shared.WithActor(context.Background(), actor)
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MutableClock is a shared.Clock tests can move forward.
type MutableClock struct {
	now time.Time
}

// NewMutableClock creates a clock fixed at now.
func NewMutableClock(now time.Time) *MutableClock {
	return &MutableClock{now: now}
}

// Now returns the current fake time.
func (c *MutableClock) Now() time.Time {
	return c.now
}

// Set moves the clock to t.
func (c *MutableClock) Set(t time.Time) {
	c.now = t
}

// Advance moves the clock forward by d.
func (c *MutableClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
