// Package shapefileimport adapts a Shapefile's first polygon shape into
// the vertex-id sequence and initial-point map polygonsvc.Service.CreatePolygon
// expects, so a temporal polygon can be seeded from surveyed/GIS-sourced
// geometry instead of only hand-authored JSON documents. Grounded on the
// teacher's internal/tiger/shapefile.go, which opens shapefiles the same
// way (shp.Open, reader.Next()/reader.Shape()) to feed a different sink
// (a COPY-loadable row set rather than a temporal polygon).
package shapefileimport

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/temporal-polygon/internal/polygonerr"
	"github.com/sells-group/temporal-polygon/internal/temporal"
)

// LoadInitialRing opens the shapefile at path and returns the natural-order
// vertex id sequence and initial-point map for its first polygon shape's
// exterior ring. Shapefile rings are closed (the first point duplicates the
// last); the duplicate is dropped so the result satisfies geomutil.Validate's
// vertex-count and collinearity checks the same way a hand-authored document
// would. Non-polygon shapes (Point, PolyLine, ...) are skipped.
func LoadInitialRing(path string) ([]int, map[int]temporal.Point, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "shapefileimport: open %s", path)
	}
	defer func() { _ = reader.Close() }()

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil || poly.NumParts == 0 || len(poly.Points) == 0 {
			continue
		}

		points := exteriorRing(poly)
		if len(points) < 3 {
			continue
		}

		ids := make([]int, len(points))
		initial := make(map[int]temporal.Point, len(points))
		for i, p := range points {
			ids[i] = i
			initial[i] = p
		}
		return ids, initial, nil
	}

	return nil, nil, polygonerr.InvalidArgumentf("shapefile %s contains no polygon shapes", path)
}

// exteriorRing returns the first ring (part) of a shapefile polygon as
// temporal.Points, with the shapefile's closing duplicate vertex dropped.
// Mirrors the teacher's polygonToMultiPolygon (internal/tiger/wkb.go) in
// computing each part's bounds from Parts/len(Points) rather than trusting
// NumPoints to agree with len(Points).
func exteriorRing(p *shp.Polygon) []temporal.Point {
	start := p.Parts[0]
	var end int32
	if p.NumParts > 1 {
		end = p.Parts[1]
	} else {
		end = int32(len(p.Points))
	}
	pts := p.Points[start:end]

	n := len(pts)
	if n > 1 && pts[0].X == pts[n-1].X && pts[0].Y == pts[n-1].Y {
		n--
	}

	out := make([]temporal.Point, n)
	for i := 0; i < n; i++ {
		out[i] = temporal.Point{X: pts[i].X, Y: pts[i].Y}
	}
	return out
}
