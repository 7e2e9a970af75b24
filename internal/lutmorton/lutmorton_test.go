package lutmorton_test

import (
	"testing"

	"github.com/chlohal/geostore/internal/lutmorton"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	pairs := [][2]uint32{
		{2, 4}, {8, 16}, {32, 64}, {128, 256},
		{1, 282472958},
		{142361806, 6791104},
		{39406836, 17391677},
		{4796168, 148478827},
		{5703434, 2026716},
		{16612077, 21815112},
		{25611391, 50736485},
		{145740861, 15962560},
		{7512008, 62085279},
		{142461646, 8125243},
		{27030150, 12038051},
		{16506797, 1454362439},
		{24122395, 31770804},
		{3632437, 151495884},
		{3539001, 41138433},
		{209021241, 4009362},
		{6166955, 386708171},
		{63864899, 11287631},
		{1645593, 2592461},
		{22285206, 62192392},
		{37433174, 9810054},
		{5631421, 2931019},
		{94732639, 31287186},
		{102597093, 30068762},
		{15248553, 21227468},
		{5188914, 54738497},
		{40546372, 20332593},
		{252899588, 54391102},
		{797344187, 1603410060},
		{1418367550, 460978379},
		{107041910, 99933461},
		{12656623, 11977039},
		{354395629, 27319534},
		{2970785, 274430},
		{3499419, 109323045},
		{0, 0},
		{0xffffffff, 0xffffffff},
	}

	for _, p := range pairs {
		gotX, gotY := lutmorton.Unmorton(lutmorton.Morton(p[0], p[1]))
		require.Equal(t, p[0], gotX)
		require.Equal(t, p[1], gotY)
	}
}

func TestMortonInterleavesLowBitsOfX(t *testing.T) {
	require.Equal(t, uint64(1), lutmorton.Morton(1, 0))
	require.Equal(t, uint64(2), lutmorton.Morton(0, 1))
	require.Equal(t, uint64(3), lutmorton.Morton(1, 1))
}
