// Package geomutil provides pure geometric utilities over ordered point
// lists: area, perimeter, centroid, bounding box, point-in-polygon,
// self-intersection, orientation, and the creation-time validation spec
// §7 requires (InvalidPolygon reasons).
package geomutil

import (
	"math"

	"github.com/sells-group/temporal-polygon/internal/temporal"
)

// collinearAreaThreshold is the minimum triangle area (shoelace, not
// divided by 2) below which three consecutive vertices are treated as
// collinear (spec §7).
const collinearAreaThreshold = 1e-10

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// SignedArea returns the signed area of the polygon via the shoelace formula.
// Positive for counter-clockwise winding, negative for clockwise.
func SignedArea(points []temporal.Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum / 2
}

// Area returns the unsigned area of the polygon.
func Area(points []temporal.Point) float64 {
	return math.Abs(SignedArea(points))
}

// Perimeter returns the sum of edge lengths of the closed ring formed by
// points.
func Perimeter(points []temporal.Point) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		dx := points[j].X - points[i].X
		dy := points[j].Y - points[i].Y
		total += math.Hypot(dx, dy)
	}
	return total
}

// Centroid returns the area-weighted centroid of the polygon.
func Centroid(points []temporal.Point) temporal.Point {
	n := len(points)
	if n == 0 {
		return temporal.Point{}
	}
	area := SignedArea(points)
	if area == 0 {
		// Degenerate polygon: fall back to the arithmetic mean.
		var sx, sy float64
		for _, p := range points {
			sx += p.X
			sy += p.Y
		}
		return temporal.Point{X: sx / float64(n), Y: sy / float64(n)}
	}

	var cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := points[i].X*points[j].Y - points[j].X*points[i].Y
		cx += (points[i].X + points[j].X) * cross
		cy += (points[i].Y + points[j].Y) * cross
	}
	factor := 1 / (6 * area)
	return temporal.Point{X: cx * factor, Y: cy * factor}
}

// BoundingBox returns the axis-aligned bounding box of points.
func BoundingBox(points []temporal.Point) BBox {
	if len(points) == 0 {
		return BBox{}
	}
	bb := BBox{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		bb.MinX = math.Min(bb.MinX, p.X)
		bb.MinY = math.Min(bb.MinY, p.Y)
		bb.MaxX = math.Max(bb.MaxX, p.X)
		bb.MaxY = math.Max(bb.MaxY, p.Y)
	}
	return bb
}

// PointInPolygon reports whether pt lies inside the polygon formed by
// points, via ray casting.
func PointInPolygon(points []temporal.Point, pt temporal.Point) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := points[i], points[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			xIntersect := (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if pt.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// Orientation returns 1 for counter-clockwise winding, -1 for clockwise,
// and 0 for a degenerate (zero-area) ring.
func Orientation(points []temporal.Point) int {
	area := SignedArea(points)
	switch {
	case area > 0:
		return 1
	case area < 0:
		return -1
	default:
		return 0
	}
}

// IsConvex reports whether the polygon is convex, assuming a simple
// (non-self-intersecting) ring.
func IsConvex(points []temporal.Point) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	var sign int
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		c := points[(i+2)%n]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			continue
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if sign != s {
			return false
		}
	}
	return true
}

// HasSelfIntersection reports whether any pair of non-adjacent edges of
// the ring formed by points intersect.
func HasSelfIntersection(points []temporal.Point) bool {
	n := len(points)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := points[i], points[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			b1, b2 := points[j], points[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 temporal.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func direction(a, b, c temporal.Point) float64 {
	return (c.X-a.X)*(b.Y-a.Y) - (b.X-a.X)*(c.Y-a.Y)
}

func onSegment(a, b, p temporal.Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// Validate checks the geometric preconditions spec §7 requires at
// polygon creation: at least 3 vertices, no collinear consecutive
// triple, and no self-intersection. Returns the accumulated list of
// human-readable reasons; an empty slice means the polygon is valid.
func Validate(points []temporal.Point) []string {
	var reasons []string

	if len(points) < 3 {
		reasons = append(reasons, "polygon must have at least 3 vertices")
		return reasons
	}

	n := len(points)
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		c := points[(i+2)%n]
		triangleArea := math.Abs((b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y))
		if triangleArea < collinearAreaThreshold {
			reasons = append(reasons, "consecutive vertices are collinear")
			break
		}
	}

	if HasSelfIntersection(points) {
		reasons = append(reasons, "polygon edges self-intersect")
	}

	return reasons
}
