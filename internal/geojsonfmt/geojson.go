// Package geojsonfmt formats reconstructed polygon point lists as
// GeoJSON, using github.com/twpayne/go-geom — the same geometry library
// the teacher uses for shapefile-to-WKB conversion
// (internal/tiger/wkb.go in the example pack), generalized here from
// EWKB output to GeoJSON Geometry/Feature/FeatureCollection output.
package geojsonfmt

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/temporal-polygon/internal/polygonerr"
	"github.com/sells-group/temporal-polygon/internal/temporal"
)

// minDistinctPoints is the minimum number of distinct points a
// reconstruction must contain to be emitted (spec §6).
const minDistinctPoints = 3

// ring builds a closed linear ring geom.Polygon from an ordered point
// list, duplicating the first point as the closing vertex.
func ring(points []temporal.Point) (*geom.Polygon, error) {
	if countDistinct(points) < minDistinctPoints {
		return nil, polygonerr.InvalidArgumentf("reconstruction has fewer than %d distinct points", minDistinctPoints)
	}

	flat := make([]float64, 0, (len(points)+1)*2)
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	flat = append(flat, points[0].X, points[0].Y)

	lr := geom.NewLinearRingFlat(geom.XY, flat)
	poly := geom.NewPolygon(geom.XY)
	if err := poly.Push(lr); err != nil {
		return nil, polygonerr.InvalidArgumentf("build polygon ring: %v", err)
	}
	return poly, nil
}

func countDistinct(points []temporal.Point) int {
	seen := make(map[temporal.Point]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// Geometry emits a bare GeoJSON Polygon geometry for a reconstruction.
func Geometry(points []temporal.Point) ([]byte, error) {
	poly, err := ring(points)
	if err != nil {
		return nil, err
	}
	g, err := geojson.Encode(poly)
	if err != nil {
		return nil, polygonerr.InvalidArgumentf("encode geojson geometry: %v", err)
	}
	return json.Marshal(g)
}

// Feature emits a reconstruction wrapped in a GeoJSON Feature, with the
// polygon id carried as the "polygon_id" property. The reconstruction
// time is not included.
func Feature(polygonID uuid.UUID, points []temporal.Point) ([]byte, error) {
	poly, err := ring(points)
	if err != nil {
		return nil, err
	}
	f := &geojson.Feature{
		Geometry: poly,
		Properties: map[string]any{
			"polygon_id": polygonID.String(),
		},
	}
	return json.Marshal(f)
}

// PolygonAtTime pairs a polygon id with a reconstructed point list, for
// use with FeatureCollection.
type PolygonAtTime struct {
	PolygonID uuid.UUID
	Points    []temporal.Point
}

// FeatureCollection emits a GeoJSON FeatureCollection over multiple
// (polygon, time) reconstructions.
func FeatureCollection(entries []PolygonAtTime) ([]byte, error) {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(entries)),
	}
	for _, e := range entries {
		poly, err := ring(e.Points)
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: poly,
			Properties: map[string]any{
				"polygon_id": e.PolygonID.String(),
			},
		})
	}
	return json.Marshal(fc)
}
