package osmcodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRelationRoundTrip(t *testing.T) {
	pools := openTestPools(t)

	fields := []Field{
		OtherField{Key: LiteralValueFromTag("type"), Value: LiteralValueFromTag("multipolygon")},
	}
	members := []RelationMember{
		{Role: "outer", Kind: ObjectKindWay, ChildID: 3},
		{Role: "inner", Kind: ObjectKindWay, ChildID: 4},
		{Role: "", Kind: ObjectKindNode, ChildID: 5},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeRelation(&buf, pools, 8008, fields, members))

	id, decodedFields, decodedMembers, err := DecodeRelation(&buf, pools)
	require.NoError(t, err)
	require.EqualValues(t, 8008, id)
	require.Len(t, decodedFields, 1)
	require.Equal(t, members, decodedMembers)
}

func TestEncodeDecodeRelationNoMembers(t *testing.T) {
	pools := openTestPools(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeRelation(&buf, pools, 9009, nil, nil))

	id, fields, members, err := DecodeRelation(&buf, pools)
	require.NoError(t, err)
	require.EqualValues(t, 9009, id)
	require.Empty(t, fields)
	require.Empty(t, members)
}

func TestEncodeRelationMemberIdOverflow(t *testing.T) {
	pools := openTestPools(t)

	members := []RelationMember{
		{Role: "outer", Kind: ObjectKindWay, ChildID: flattenedIDMask},
	}

	var buf bytes.Buffer
	err := EncodeRelation(&buf, pools, 1, nil, members)
	require.Error(t, err)
}

func TestFlattenUnflattenIDRoundTrip(t *testing.T) {
	kinds := []ObjectKind{ObjectKindNode, ObjectKindWay, ObjectKindRelation}
	for _, k := range kinds {
		flat, err := FlattenID(k, 123456)
		require.NoError(t, err)

		gotKind, gotID := UnflattenID(flat)
		require.Equal(t, k, gotKind)
		require.EqualValues(t, 123456, gotID)
	}
}

func TestFlattenIDOverflow(t *testing.T) {
	_, err := FlattenID(ObjectKindWay, flattenedIDMask)
	require.Error(t, err)
}
