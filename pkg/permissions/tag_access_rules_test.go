package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTagGrants(t *testing.T) {
	t.Run("union adds the delta", func(t *testing.T) {
		result, err := UpdateTagGrants([]int64{3, 1}, []int64{2, 3}, ModeUnion)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, result)
	})

	t.Run("difference removes the delta", func(t *testing.T) {
		result, err := UpdateTagGrants([]int64{1, 2, 3}, []int64{2, 9}, ModeDifference)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3}, result)
	})

	t.Run("result is deduplicated", func(t *testing.T) {
		result, err := UpdateTagGrants([]int64{1, 1}, []int64{1}, ModeUnion)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, result)
	})

	t.Run("empty inputs", func(t *testing.T) {
		result, err := UpdateTagGrants(nil, nil, ModeUnion)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := UpdateTagGrants([]int64{1}, []int64{2}, "intersect")

		var invalid *ErrInvalidOperation
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "intersect", invalid.Mode)
		assert.Contains(t, invalid.Error(), "intersect")
	})
}
