package btreevec_test

import (
	"testing"

	"github.com/chlohal/geostore/pkg/btreevec"
	"github.com/stretchr/testify/require"
)

func TestPushAndGet(t *testing.T) {
	b := btreevec.New[int, int]()
	b.Push(2, 1)
	b.Push(2, 3)
	b.Push(2, 10)
	b.Push(1, 10)
	b.Push(8, 1)
	b.Push(8, 3)

	require.Equal(t, 6, b.Len())

	vs, ok := b.Get(2)
	require.True(t, ok)
	require.Equal(t, []int{1, 3, 10}, vs)

	vs, ok = b.Get(1)
	require.True(t, ok)
	require.Equal(t, []int{10}, vs)

	_, ok = b.Get(99)
	require.False(t, ok)
}

func TestAllIsSortedByKey(t *testing.T) {
	b := btreevec.New[int, int]()
	b.Push(2, 1)
	b.Push(2, 3)
	b.Push(8, 3)
	b.Push(2, 10)
	b.Push(1, 10)
	b.Push(8, 1)

	got := b.All()
	want := []btreevec.Pair[int, int]{
		{Key: 1, Value: 10},
		{Key: 2, Value: 1},
		{Key: 2, Value: 3},
		{Key: 2, Value: 10},
		{Key: 8, Value: 3},
		{Key: 8, Value: 1},
	}
	require.Equal(t, want, got)
}

func TestStatelessNextVisitsEveryEntry(t *testing.T) {
	b := btreevec.New[string, int]()
	b.Push("b", 1)
	b.Push("a", 1)
	b.Push("a", 2)
	b.Push("c", 1)

	var got []btreevec.Pair[string, int]
	state := b.BeginIteration()
	for {
		var k string
		var v int
		var ok bool
		state, k, v, ok = b.StatelessNext(state)
		if !ok {
			break
		}
		got = append(got, btreevec.Pair[string, int]{Key: k, Value: v})
	}

	require.Equal(t, []btreevec.Pair[string, int]{
		{Key: "a", Value: 1},
		{Key: "a", Value: 2},
		{Key: "b", Value: 1},
		{Key: "c", Value: 1},
	}, got)
}

func TestBeginRangeSkipsEarlierKeys(t *testing.T) {
	b := btreevec.New[int, string]()
	b.Push(1, "one")
	b.Push(3, "three")
	b.Push(5, "five")
	b.Push(7, "seven")

	state := b.BeginRange(4)
	_, k, v, ok := b.StatelessNext(state)
	require.True(t, ok)
	require.Equal(t, 5, k)
	require.Equal(t, "five", v)
}

func TestFromSortedFoldsAdjacentKeys(t *testing.T) {
	b := btreevec.FromSorted([]btreevec.Pair[int, int]{
		{Key: 1, Value: 10},
		{Key: 2, Value: 1},
		{Key: 2, Value: 3},
		{Key: 8, Value: 1},
	})

	require.Equal(t, 4, b.Len())
	vs, ok := b.Get(2)
	require.True(t, ok)
	require.Equal(t, []int{1, 3}, vs)
}

func TestEmptyIsEmpty(t *testing.T) {
	b := btreevec.New[int, int]()
	require.True(t, b.IsEmpty())
	require.Equal(t, 0, b.Len())
	_, ok := b.Get(1)
	require.False(t, ok)
}
