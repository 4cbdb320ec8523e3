package geo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nairobi = Point{Lat: -1.2921, Lng: 36.8219}
	thika   = Point{Lat: -1.0333, Lng: 37.0693}
)

type feature struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

func TestStraightRouteLine(t *testing.T) {
	b, err := RouteLine(nairobi, thika, "")
	require.NoError(t, err)

	raw, err := ToGeoJSON(b)
	require.NoError(t, err)

	var f feature
	require.NoError(t, json.Unmarshal(raw, &f))
	assert.Equal(t, "LineString", f.Type)
	assert.Equal(t, [][]float64{{36.8219, -1.2921}, {37.0693, -1.0333}}, f.Coordinates)
}

func TestRouteLineFromGeoJSON(t *testing.T) {
	raw := `{"type":"LineString","coordinates":[[36.82,-1.29],[36.9,-1.2],[37.07,-1.03]]}`
	b, err := RouteLine(nairobi, thika, raw)
	require.NoError(t, err)

	out, err := ToGeoJSON(b)
	require.NoError(t, err)
	var f feature
	require.NoError(t, json.Unmarshal(out, &f))
	assert.Len(t, f.Coordinates, 3)
}

func TestRouteLineRejects(t *testing.T) {
	cases := map[string]struct {
		start, end Point
		raw        string
		want       error
	}{
		"latitude out of range": {Point{Lat: 91}, thika, "", ErrCoordinateRange},
		"NaN":                   {nairobi, Point{Lat: math.NaN()}, "", ErrCoordinateRange},
		"point geometry":        {nairobi, thika, `{"type":"Point","coordinates":[1,2]}`, ErrNotLineString},
		"single position":       {nairobi, thika, `{"type":"LineString","coordinates":[[1,2]]}`, ErrNotLineString},
		"not json":              {nairobi, thika, `LINESTRING(1 2, 3 4)`, ErrNotLineString},
		"position out of range": {nairobi, thika, `{"type":"LineString","coordinates":[[1,2],[200,0]]}`, ErrCoordinateRange},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := RouteLine(tc.start, tc.end, tc.raw)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestToGeoJSONEmpty(t *testing.T) {
	raw, err := ToGeoJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	_, err = ToGeoJSON([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestTrack(t *testing.T) {
	raw, err := Track(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = Track([]Point{nairobi})
	require.NoError(t, err)
	var point struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal(raw, &point))
	assert.Equal(t, "Point", point.Type)
	assert.Equal(t, []float64{36.8219, -1.2921}, point.Coordinates)

	raw, err = Track([]Point{nairobi, thika})
	require.NoError(t, err)
	var line feature
	require.NoError(t, json.Unmarshal(raw, &line))
	assert.Equal(t, "LineString", line.Type)
	assert.Len(t, line.Coordinates, 2)
}
