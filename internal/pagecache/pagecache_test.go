package pagecache_test

import (
	"testing"

	"github.com/chlohal/geostore/internal/pagecache"
	"github.com/stretchr/testify/require"
)

type blob struct{ n int }

func (b blob) EstimatedBytes() int { return b.n }

func TestGetMissReturnsFalse(t *testing.T) {
	c := pagecache.New[int, blob](1000)
	_, ok := c.Get(1)
	require.False(t, ok)
}

func TestInsertThenGet(t *testing.T) {
	c := pagecache.New[int, blob](1000)
	h := c.Insert(1, blob{n: 10})
	require.Equal(t, blob{n: 10}, h.Value())
	h.Release()

	got, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, blob{n: 10}, got.Value())
	got.Release()
}

func TestEvictionSparesHeldEntries(t *testing.T) {
	c := pagecache.New[int, blob](150)

	held := c.Insert(1, blob{n: 100})
	unheld := c.Insert(2, blob{n: 100})
	unheld.Release()

	// Inserting a third entry pushes well over budget; only the
	// unheld entry is eligible for eviction.
	h3 := c.Insert(3, blob{n: 100})
	h3.Release()

	_, ok := c.Get(2)
	require.False(t, ok, "unheld entry should have been evicted")

	_, ok = c.Get(1)
	require.True(t, ok, "held entry must survive eviction")

	held.Release()
}

func TestEvictAllRemovesOnlyUnheldEntries(t *testing.T) {
	c := pagecache.New[int, blob](1_000_000)

	held := c.Insert(1, blob{n: 10})
	unheld := c.Insert(2, blob{n: 10})
	unheld.Release()

	c.EvictAll()

	_, ok := c.Get(1)
	require.True(t, ok)
	_, ok = c.Get(2)
	require.False(t, ok)

	held.Release()
}
