package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity(t *testing.T) {
	t.Run("rejects negative construction", func(t *testing.T) {
		_, err := NewQuantity(-1)
		var negErr *ErrNegativeQuantity
		assert.ErrorAs(t, err, &negErr)
	})

	t.Run("add and sub never go below zero", func(t *testing.T) {
		q := MustQuantity(5)
		up, err := q.Add(3)
		require.NoError(t, err)
		assert.Equal(t, int64(8), up.Int64())

		down, err := q.Sub(5)
		require.NoError(t, err)
		assert.True(t, down.IsZero())

		_, err = q.Sub(6)
		assert.Error(t, err)
		_, err = q.Add(-6)
		assert.Error(t, err)
		assert.Equal(t, int64(5), q.Int64())
	})

	t.Run("json rejects negatives and fractions", func(t *testing.T) {
		var q Quantity
		require.NoError(t, json.Unmarshal([]byte(`4`), &q))
		assert.Equal(t, int64(4), q.Int64())
		assert.Error(t, json.Unmarshal([]byte(`-1`), &q))
		assert.Error(t, json.Unmarshal([]byte(`1.5`), &q))
	})

	t.Run("scans integer columns", func(t *testing.T) {
		var q Quantity
		require.NoError(t, q.Scan(int64(12)))
		assert.Equal(t, "12", q.String())
		assert.Error(t, q.Scan(int64(-2)))
	})
}
