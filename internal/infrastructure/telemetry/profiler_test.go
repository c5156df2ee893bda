package telemetry_test

import (
	"testing"

	"github.com/rentalcore/backend/internal/infrastructure/config"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := telemetry.NewProfiler(config.TelemetryConfig{
		Enabled:          true,
		PyroscopeAddress: "http://localhost:4040",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	p, err := telemetry.NewProfiler(config.TelemetryConfig{
		ProfilingEnabled: true,
		ServiceName:      "rentalcore",
	}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "pyroscope_address")
}
