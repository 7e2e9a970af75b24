package tree_test

import (
	"path/filepath"
	"testing"

	"github.com/chlohal/geostore/internal/tree"
	"github.com/stretchr/testify/require"
)

func openTestTree(t *testing.T, saturation int) *tree.Tree {
	t.Helper()
	dir := t.TempDir()

	tr, err := tree.Open(
		filepath.Join(dir, "tree.pages"),
		filepath.Join(dir, "tree.skeleton"),
		tree.Rect{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000},
		256,
		100,
		nil,
	)
	require.NoError(t, err)

	tree.SetSaturationForTest(tr, saturation)
	return tr
}

func TestInsertAndGetRoundTrip(t *testing.T) {
	tr := openTestTree(t, 1<<30)

	box := tree.Rect{MinX: 10, MinY: 10, MaxX: 20, MaxY: 20}
	require.NoError(t, tr.Insert(box, []byte("hello")))

	got, ok, err := tr.Get(box)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), got)
}

func TestGetMissingReturnsNotOk(t *testing.T) {
	tr := openTestTree(t, 1<<30)

	_, ok, err := tr.Get(tree.Rect{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestQueryFindsOverlappingEntriesAcrossSplits(t *testing.T) {
	tr := openTestTree(t, 4)

	boxes := []tree.Rect{
		{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
		{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110},
		{MinX: 200, MinY: 200, MaxX: 210, MaxY: 210},
		{MinX: 300, MinY: 300, MaxX: 310, MaxY: 310},
		{MinX: 400, MinY: 400, MaxX: 410, MaxY: 410},
		{MinX: 500, MinY: 500, MaxX: 510, MaxY: 510},
		{MinX: 600, MinY: 600, MaxX: 610, MaxY: 610},
		{MinX: 700, MinY: 700, MaxX: 710, MaxY: 710},
	}
	for i, b := range boxes {
		require.NoError(t, tr.Insert(b, []byte{byte(i)}))
	}

	var hits []tree.Hit
	err := tr.Query(tree.Rect{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}, func(h tree.Hit) bool {
		hits = append(hits, h)
		return true
	})
	require.NoError(t, err)
	require.Len(t, hits, len(boxes))

	var narrow []tree.Hit
	err = tr.Query(tree.Rect{MinX: 95, MinY: 95, MaxX: 115, MaxY: 115}, func(h tree.Hit) bool {
		narrow = append(narrow, h)
		return true
	})
	require.NoError(t, err)
	require.Len(t, narrow, 1)
	require.Equal(t, []byte{1}, narrow[0].Value)
}

func TestQueryVisitCanStopEarly(t *testing.T) {
	tr := openTestTree(t, 1<<30)

	require.NoError(t, tr.Insert(tree.Rect{MinX: 0, MinY: 0, MaxX: 5, MaxY: 5}, []byte("a")))
	require.NoError(t, tr.Insert(tree.Rect{MinX: 10, MinY: 10, MaxX: 15, MaxY: 15}, []byte("b")))

	count := 0
	err := tr.Query(tree.Rect{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}, func(tree.Hit) bool {
		count++
		return false
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestFlushAndReopenPreservesSkeletonAndData(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "tree.pages")
	skeletonPath := filepath.Join(dir, "tree.skeleton")
	universe := tree.Rect{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}

	tr, err := tree.Open(dataPath, skeletonPath, universe, 256, 100, nil)
	require.NoError(t, err)
	tree.SetSaturationForTest(tr, 2)

	for i, b := range []tree.Rect{
		{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
		{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110},
		{MinX: 500, MinY: 500, MaxX: 510, MaxY: 510},
	} {
		require.NoError(t, tr.Insert(b, []byte{byte(i)}))
	}

	require.NoError(t, tr.Flush(skeletonPath))
	require.NoError(t, tr.Close())

	reopened, err := tree.Open(dataPath, skeletonPath, universe, 256, 100, nil)
	require.NoError(t, err)

	got, ok, err := reopened.Get(tree.Rect{MinX: 100, MinY: 100, MaxX: 110, MaxY: 110})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{1}, got)
}
