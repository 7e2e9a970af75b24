package osmcodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeNodeNoTags(t *testing.T) {
	pools := openTestPools(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeNode(&buf, pools, 1001, NodeNoTags{}))

	id, fields, err := DecodeNode(&buf, pools)
	require.NoError(t, err)
	require.EqualValues(t, 1001, id)
	require.Equal(t, NodeNoTags{}, fields)
}

func TestEncodeDecodeNodeSingleTag(t *testing.T) {
	pools := openTestPools(t)

	single, ok := NodeSingleInlinedFromTags(map[string]string{"power": "pole"})
	require.True(t, ok)
	require.Equal(t, NodeSinglePowerPole, single)

	var buf bytes.Buffer
	require.NoError(t, EncodeNode(&buf, pools, 2002, NodeSingleTag{Tag: single}))

	id, fields, err := DecodeNode(&buf, pools)
	require.NoError(t, err)
	require.EqualValues(t, 2002, id)
	require.Equal(t, NodeSingleTag{Tag: NodeSinglePowerPole}, fields)
}

func TestNodeSingleInlinedFromTagsLeafComposites(t *testing.T) {
	needle, ok := NodeSingleInlinedFromTags(map[string]string{"natural": "tree", "leaf_type": "needleleaved"})
	require.True(t, ok)
	require.Equal(t, NodeSingleNeedleleavedTree, needle)

	broad, ok := NodeSingleInlinedFromTags(map[string]string{"natural": "tree", "leaf_type": "broadleaved"})
	require.True(t, ok)
	require.Equal(t, NodeSingleBroadleavedTree, broad)

	_, ok = NodeSingleInlinedFromTags(map[string]string{"natural": "tree", "leaf_type": "unknown"})
	require.False(t, ok)
}

func TestEncodeDecodeNodeMultipleTags(t *testing.T) {
	pools := openTestPools(t)

	fields := []Field{
		OtherField{Key: LiteralValueFromTag("shop"), Value: LiteralValueFromTag("bakery")},
		OtherField{Key: LiteralValueFromTag("name"), Value: LiteralValueFromTag("Joe's")},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeNode(&buf, pools, 3003, NodeMultipleTags{Fields: fields}))

	id, decodedFields, err := DecodeNode(&buf, pools)
	require.NoError(t, err)
	require.EqualValues(t, 3003, id)

	multi, ok := decodedFields.(NodeMultipleTags)
	require.True(t, ok)
	require.Len(t, multi.Fields, 2)

	first := multi.Fields[0].(OtherField)
	require.Equal(t, "shop", first.Key.AsString())
	require.Equal(t, "bakery", first.Value.AsString())
}

func TestEncodeDecodeNodeMultipleTagsManyFieldsOverflowsInlineCount(t *testing.T) {
	pools := openTestPools(t)

	fields := make([]Field, 0, 10)
	for i := 0; i < 10; i++ {
		fields = append(fields, OtherField{
			Key:   LiteralValueFromTag("k"),
			Value: NewUInt(uint64(i)),
		})
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeNode(&buf, pools, 4004, NodeMultipleTags{Fields: fields}))

	id, decodedFields, err := DecodeNode(&buf, pools)
	require.NoError(t, err)
	require.EqualValues(t, 4004, id)

	multi, ok := decodedFields.(NodeMultipleTags)
	require.True(t, ok)
	require.Len(t, multi.Fields, 10)
}

func TestClassifyNodeTagsNiches(t *testing.T) {
	fields := ClassifyNodeTags(map[string]string{"amenity": "bench"})
	require.Equal(t, NodeSingleTag{Tag: NodeSingleBench}, fields)
}

func TestClassifyNodeTagsDropsDiscardedThenNiches(t *testing.T) {
	fields := ClassifyNodeTags(map[string]string{"amenity": "bench", "fixme": "check this"})
	require.Equal(t, NodeSingleTag{Tag: NodeSingleBench}, fields)
}

func TestClassifyNodeTagsNoTagsAfterDiscard(t *testing.T) {
	fields := ClassifyNodeTags(map[string]string{"source": "survey"})
	require.Equal(t, NodeNoTags{}, fields)
}

func TestClassifyNodeTagsFallsBackToMultiple(t *testing.T) {
	fields := ClassifyNodeTags(map[string]string{"shop": "bakery", "name": "Joe's"})
	multi, ok := fields.(NodeMultipleTags)
	require.True(t, ok)
	require.Len(t, multi.Fields, 2)
}
