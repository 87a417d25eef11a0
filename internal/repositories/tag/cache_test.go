package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/graft/pkg/models"
)

func snapshotCache(tags ...models.Tag) *Cache {
	c := NewCache(nil)
	for _, t := range tags {
		c.byName[t.Name] = t
		c.byID[t.ID] = t
	}
	return c
}

func TestCache_Get(t *testing.T) {
	c := snapshotCache(models.Tag{ID: 1, Name: "oil"})

	got, ok := c.Get("oil")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)

	_, ok = c.Get("Oil")
	assert.False(t, ok)
}

func TestCache_GetByID(t *testing.T) {
	c := snapshotCache(models.Tag{ID: 7, Name: "nyc"})

	got, ok := c.GetByID(7)
	require.True(t, ok)
	assert.Equal(t, "nyc", got.Name)

	_, ok = c.GetByID(8)
	assert.False(t, ok)
}

func TestCache_SearchByName(t *testing.T) {
	c := snapshotCache(
		models.Tag{ID: 1, Name: "oil"},
		models.Tag{ID: 2, Name: "real estate"},
	)

	t.Run("exact match", func(t *testing.T) {
		got, ok := c.SearchByName("oil")
		require.True(t, ok)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("case folded", func(t *testing.T) {
		got, ok := c.SearchByName("OIL")
		require.True(t, ok)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("dashes fold to spaces", func(t *testing.T) {
		got, ok := c.SearchByName("Real-Estate")
		require.True(t, ok)
		assert.Equal(t, int64(2), got.ID)
	})

	t.Run("miss", func(t *testing.T) {
		_, ok := c.SearchByName("finance")
		assert.False(t, ok)
	})
}
