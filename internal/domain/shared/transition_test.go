package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lightState string

const (
	lightRed    lightState = "RED"
	lightGreen  lightState = "GREEN"
	lightYellow lightState = "YELLOW"
	lightOff    lightState = "OFF"
)

var lightTable = TransitionTable[lightState]{
	lightRed:    {lightGreen, lightOff},
	lightGreen:  {lightYellow, lightOff},
	lightYellow: {lightRed, lightOff},
}

func TestTransitionTable(t *testing.T) {
	t.Run("allows listed edges", func(t *testing.T) {
		next, err := lightTable.Transition("LIGHT", lightRed, lightGreen)
		require.NoError(t, err)
		assert.Equal(t, lightGreen, next)
	})

	t.Run("rejects unlisted edges and keeps the current state", func(t *testing.T) {
		next, err := lightTable.Transition("LIGHT", lightRed, lightYellow)
		require.Error(t, err)
		assert.Equal(t, lightRed, next)
		assert.True(t, errors.Is(err, ErrInvalidTransition))
	})

	t.Run("states without edges are terminal", func(t *testing.T) {
		assert.True(t, lightTable.IsTerminal(lightOff))
		assert.False(t, lightTable.IsTerminal(lightRed))
		_, err := lightTable.Transition("LIGHT", lightOff, lightRed)
		assert.Error(t, err)
	})

	t.Run("targets returns a copy", func(t *testing.T) {
		targets := lightTable.Targets(lightRed)
		targets[0] = lightOff
		assert.Equal(t, lightGreen, lightTable[lightRed][0])
	})
}
