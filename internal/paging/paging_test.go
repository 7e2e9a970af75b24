package paging_test

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/chlohal/geostore/internal/paging"
	"github.com/chlohal/geostore/pkg/varint"
	"github.com/stretchr/testify/require"
)

func serializeBlob(w io.Writer, v []byte) error {
	if err := varint.WriteUint64(w, uint64(len(v))); err != nil {
		return err
	}
	_, err := w.Write(v)
	return err
}

func deserializeBlob(r io.Reader) ([]byte, error) {
	n, err := varint.ReadUint64(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func openTestStorage(t *testing.T, pageSize uint64) *paging.Storage[[]byte] {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pages.bin")
	s, err := paging.Open[[]byte](path, pageSize, 100, serializeBlob, deserializeBlob, nil)
	require.NoError(t, err)
	return s
}

func TestNewPageRoundTrip(t *testing.T) {
	s := openTestStorage(t, 64)

	id, h, err := s.NewPage([]byte("hello"))
	require.NoError(t, err)
	h.Release()

	got, err := s.Get(id)
	require.NoError(t, err)
	var val []byte
	got.View(func(v []byte) { val = v })
	require.Equal(t, []byte("hello"), val)
	got.Release()
}

func TestPageChainGrowsAndShrinksAcrossPages(t *testing.T) {
	s := openTestStorage(t, 64) // data region is 48 bytes per page

	id, h, err := s.NewPage(bytes.Repeat([]byte{0x11}, 10))
	require.NoError(t, err)
	h.Release()

	// Grow well past a single page's data region; this must allocate
	// overflow pages and link them into the chain.
	big := bytes.Repeat([]byte{0x22}, 500)
	h, err = s.Get(id)
	require.NoError(t, err)
	h.Update(func(v *[]byte) { *v = big })
	h.Release()

	h, err = s.Get(id)
	require.NoError(t, err)
	var got []byte
	h.View(func(v []byte) { got = append([]byte(nil), v...) })
	h.Release()
	require.Equal(t, big, got)

	// Shrink back down; the chain's trailing pages should be freed and
	// available for reuse by the next allocation.
	small := []byte{0xaa}
	h, err = s.Get(id)
	require.NoError(t, err)
	h.Update(func(v *[]byte) { *v = small })
	h.Release()

	h, err = s.Get(id)
	require.NoError(t, err)
	h.View(func(v []byte) { got = append([]byte(nil), v...) })
	h.Release()
	require.Equal(t, small, got)
}

func TestGetOnUnallocatedPageFails(t *testing.T) {
	s := openTestStorage(t, 64)
	_, err := s.Get(12345)
	require.Error(t, err)
}

func TestReopenRecoversHighWaterMark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.bin")

	s, err := paging.Open[[]byte](path, 64, 100, serializeBlob, deserializeBlob, nil)
	require.NoError(t, err)

	id, h, err := s.NewPage([]byte("persisted"))
	require.NoError(t, err)
	h.Release()
	require.NoError(t, s.Close())

	reopened, err := paging.Open[[]byte](path, 64, 100, serializeBlob, deserializeBlob, nil)
	require.NoError(t, err)

	got, err := reopened.Get(id)
	require.NoError(t, err)
	var val []byte
	got.View(func(v []byte) { val = v })
	require.Equal(t, []byte("persisted"), val)
	got.Release()

	// A freshly allocated page must not reuse the id still in use above.
	newID, h2, err := reopened.NewPage([]byte("second"))
	require.NoError(t, err)
	h2.Release()
	require.NotEqual(t, id, newID)
}
