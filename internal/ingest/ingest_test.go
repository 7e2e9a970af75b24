package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chlohal/geostore/internal/osmcodec"
	"github.com/chlohal/geostore/pkg/geostore"
)

type fakeSource struct {
	nodes     []RawNode
	ways      []RawWay
	relations []RawRelation
}

func (f *fakeSource) EachNode(emit func(RawNode) bool) error {
	for _, n := range f.nodes {
		if !emit(n) {
			break
		}
	}
	return nil
}

func (f *fakeSource) EachWay(emit func(RawWay) bool) error {
	for _, w := range f.ways {
		if !emit(w) {
			break
		}
	}
	return nil
}

func (f *fakeSource) EachRelation(emit func(RawRelation) bool) error {
	for _, r := range f.relations {
		if !emit(r) {
			break
		}
	}
	return nil
}

func openTestStore(t *testing.T) *geostore.Instance {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "store")
	store, err := geostore.Open(
		context.Background(),
		"ingest-test",
		geostore.WithDataDir(dir),
		geostore.WithNodeSaturationPoint(100),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestImportInsertsEveryPrimitive(t *testing.T) {
	store := openTestStore(t)

	src := &fakeSource{
		nodes: []RawNode{
			{ID: 1, Box: geostore.Box{MinX: 10, MinY: 10, MaxX: 10, MaxY: 10}, Tags: map[string]string{"natural": "tree"}},
			{ID: 2, Box: geostore.Box{MinX: 20, MinY: 20, MaxX: 20, MaxY: 20}, Tags: map[string]string{"shop": "bakery"}},
		},
		ways: []RawWay{
			{ID: 3, Box: geostore.Box{MinX: 0, MinY: 0, MaxX: 5, MaxY: 5},
				Points: []geostore.WayPoint{{X: 0, Y: 0}, {X: 5, Y: 5}},
				Tags:   map[string]string{"highway": "residential"}},
		},
		relations: []RawRelation{
			{ID: 4, Box: geostore.Box{MinX: 0, MinY: 0, MaxX: 20, MaxY: 20},
				Tags:    map[string]string{"type": "multipolygon"},
				Members: []geostore.RelationMember{{Role: "outer", Kind: osmcodec.ObjectKindWay, ChildID: 3}}},
		},
	}

	skipped, err := Import(store, src, nil)
	require.NoError(t, err)
	require.Zero(t, skipped)

	var found int
	err = store.Query(geostore.Box{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100}, func(geostore.Object) bool {
		found++
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 4, found)
}

func TestStreamBuildInsertsEveryPrimitive(t *testing.T) {
	store := openTestStore(t)

	const n = 50
	nodes := make([]RawNode, 0, n)
	for i := int32(0); i < n; i++ {
		nodes = append(nodes, RawNode{
			ID:  uint64(i),
			Box: geostore.Box{MinX: i, MinY: i, MaxX: i, MaxY: i},
			Tags: map[string]string{
				"shop": "bakery",
			},
		})
	}
	src := &fakeSource{nodes: nodes}

	skipped, err := StreamBuild(context.Background(), store, src, 4)
	require.NoError(t, err)
	require.Zero(t, skipped)

	var found int
	err = store.Query(geostore.Box{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000}, func(geostore.Object) bool {
		found++
		return true
	})
	require.NoError(t, err)
	require.Equal(t, n, found)
}
