package pool_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chlohal/geostore/internal/pool"
)

func openTestPool(t *testing.T, blockCapacity int) *pool.Pool {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pool.bin")
	p, err := pool.Open(path, 256, blockCapacity, nil)
	require.NoError(t, err)
	return p
}

func TestInlinesShortValues(t *testing.T) {
	p := openTestPool(t, 4)

	for _, v := range [][]byte{{}, {1}, {1, 2}, {1, 2, 3}, {1, 2, 3, 4}} {
		id, err := p.Insert(v)
		require.NoError(t, err)
		require.True(t, id.Inlined())

		got, err := p.Get(id)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestWrittenValuesRoundTrip(t *testing.T) {
	p := openTestPool(t, 4)

	values := [][]byte{
		bytes.Repeat([]byte("a"), 20),
		bytes.Repeat([]byte("b"), 5),
		[]byte("hello world, this is longer than four bytes"),
	}

	ids := make([]pool.ID, len(values))
	for i, v := range values {
		id, err := p.Insert(v)
		require.NoError(t, err)
		require.False(t, id.Inlined())
		ids[i] = id
	}

	for i, id := range ids {
		got, err := p.Get(id)
		require.NoError(t, err)
		require.Equal(t, values[i], got)
	}
}

func TestDuplicateValuesDedup(t *testing.T) {
	p := openTestPool(t, 4)

	v := []byte("a repeated street name")

	first, err := p.Insert(v)
	require.NoError(t, err)

	second, err := p.Insert(append([]byte(nil), v...))
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestValuesSpanMultipleBlocks(t *testing.T) {
	p := openTestPool(t, 3)

	var ids []pool.ID
	var values [][]byte
	for i := 0; i < 10; i++ {
		v := bytes.Repeat([]byte{byte('a' + i)}, 10+i)
		id, err := p.Insert(v)
		require.NoError(t, err)
		ids = append(ids, id)
		values = append(values, v)
	}

	for i, id := range ids {
		got, err := p.Get(id)
		require.NoError(t, err)
		require.Equal(t, values[i], got)
	}
}

func TestReopenReplaysBlocksAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.bin")

	p, err := pool.Open(path, 256, 3, nil)
	require.NoError(t, err)

	var ids []pool.ID
	var values [][]byte
	for i := 0; i < 7; i++ {
		v := bytes.Repeat([]byte{byte('a' + i)}, 10+i)
		id, err := p.Insert(v)
		require.NoError(t, err)
		ids = append(ids, id)
		values = append(values, v)
	}
	require.NoError(t, p.Close())

	reopened, err := pool.Open(path, 256, 3, nil)
	require.NoError(t, err)

	for i, id := range ids {
		got, err := reopened.Get(id)
		require.NoError(t, err)
		require.Equal(t, values[i], got)
	}

	more := []byte("appended after reopen, long enough to avoid inlining")
	newID, err := reopened.Insert(more)
	require.NoError(t, err)
	require.False(t, newID.Inlined())

	got, err := reopened.Get(newID)
	require.NoError(t, err)
	require.Equal(t, more, got)
}
