package osmcodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeWayRoundTrip(t *testing.T) {
	pools := openTestPools(t)

	points := []WayPoint{
		{X: 100, Y: 200},
		{X: 150, Y: 180},
		{X: 90, Y: 250},
	}
	fields := []Field{
		OtherField{Key: LiteralValueFromTag("highway"), Value: LiteralValueFromTag("residential")},
	}

	const originX, originY int32 = 90, 180

	var buf bytes.Buffer
	require.NoError(t, EncodeWay(&buf, pools, 5005, points, originX, originY, fields))

	id, decodedPoints, decodedFields, err := DecodeWay(&buf, pools, originX, originY)
	require.NoError(t, err)
	require.EqualValues(t, 5005, id)
	require.Equal(t, points, decodedPoints)
	require.Len(t, decodedFields, 1)
	other := decodedFields[0].(OtherField)
	require.Equal(t, "highway", other.Key.AsString())
	require.Equal(t, "residential", other.Value.AsString())
}

func TestEncodeDecodeWayRoundTripNegativeCoordinates(t *testing.T) {
	pools := openTestPools(t)

	points := []WayPoint{
		{X: -500, Y: -300},
		{X: -450, Y: -290},
	}
	const originX, originY int32 = -500, -300

	var buf bytes.Buffer
	require.NoError(t, EncodeWay(&buf, pools, 6006, points, originX, originY, nil))

	id, decodedPoints, decodedFields, err := DecodeWay(&buf, pools, originX, originY)
	require.NoError(t, err)
	require.EqualValues(t, 6006, id)
	require.Equal(t, points, decodedPoints)
	require.Empty(t, decodedFields)
}

func TestDecodeWayPointsSkipsFields(t *testing.T) {
	pools := openTestPools(t)

	points := []WayPoint{{X: 10, Y: 10}, {X: 20, Y: 5}}
	fields := []Field{
		OtherField{Key: LiteralValueFromTag("name"), Value: LiteralValueFromTag("Elm Street")},
	}
	const originX, originY int32 = 10, 5

	var buf bytes.Buffer
	require.NoError(t, EncodeWay(&buf, pools, 7007, points, originX, originY, fields))

	id, decodedPoints, err := DecodeWayPoints(&buf, originX, originY)
	require.NoError(t, err)
	require.EqualValues(t, 7007, id)
	require.Equal(t, points, decodedPoints)
}
