// Package geo converts between the API's GeoJSON and the WKB stored in the
// database, and builds track geometries from location pings.
package geo

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// SRID of every stored geometry (WGS 84).
const SRID = 4326

var (
	ErrCoordinateRange = errors.New("latitude must be within [-90, 90] and longitude within [-180, 180]")
	ErrNotLineString   = errors.New("geometry must be a GeoJSON LineString with at least two positions")
)

type Point struct {
	Lat float64
	Lng float64
}

func (p Point) Valid() bool {
	return ValidCoordinate(p.Lat, p.Lng)
}

func (p Point) coord() geom.Coord {
	return geom.Coord{p.Lng, p.Lat}
}

func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// RouteLine returns the WKB for a route. A non-empty raw value must be a
// GeoJSON LineString; without one the line runs straight from start to end.
func RouteLine(start, end Point, raw string) ([]byte, error) {
	if !start.Valid() || !end.Valid() {
		return nil, ErrCoordinateRange
	}

	var ls *geom.LineString
	if raw == "" {
		var err error
		ls, err = geom.NewLineString(geom.XY).SetCoords([]geom.Coord{start.coord(), end.coord()})
		if err != nil {
			return nil, err
		}
	} else {
		var g geom.T
		if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotLineString, err)
		}
		var ok bool
		ls, ok = g.(*geom.LineString)
		if !ok || ls.NumCoords() < 2 {
			return nil, ErrNotLineString
		}
		for _, c := range ls.Coords() {
			if !ValidCoordinate(c.Y(), c.X()) {
				return nil, ErrCoordinateRange
			}
		}
	}

	return wkb.Marshal(ls.SetSRID(SRID), binary.LittleEndian)
}

// ToGeoJSON decodes stored WKB. Empty input yields nil.
func ToGeoJSON(wkbBytes []byte) (json.RawMessage, error) {
	if len(wkbBytes) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return nil, err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// Track renders pings, oldest first, as a GeoJSON Point for a single ping
// or a LineString for several. No pings yields nil.
func Track(points []Point) (json.RawMessage, error) {
	var g geom.T
	switch len(points) {
	case 0:
		return nil, nil
	case 1:
		p, err := geom.NewPoint(geom.XY).SetCoords(points[0].coord())
		if err != nil {
			return nil, err
		}
		g = p
	default:
		coords := make([]geom.Coord, len(points))
		for i, p := range points {
			coords[i] = p.coord()
		}
		ls, err := geom.NewLineString(geom.XY).SetCoords(coords)
		if err != nil {
			return nil, err
		}
		g = ls
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
