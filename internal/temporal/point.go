// Package temporal implements the in-memory temporal polygon store: the
// per-vertex state history, binary-search reconstruction, the temporal
// query engine, and the update policy that drives it. See the package's
// component files for the individual pieces (point, function, state,
// vertex, polygon, manager, query).
package temporal

import (
	"time"

	"github.com/sells-group/temporal-polygon/internal/polygonerr"
)

// Point is a 2D Cartesian or geographic coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the point translated by the given delta.
func (p Point) Add(delta Point) Point {
	return Point{X: p.X + delta.X, Y: p.Y + delta.Y}
}

// Sub returns the delta between p and q (p - q).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// TimeInterval is a half-open interval [Start, End). End is nil for an
// open-ended interval.
type TimeInterval struct {
	Start time.Time
	End   *time.Time
}

// NewInterval constructs a closed interval [start, end). Returns
// polygonerr.ErrInvalidInterval if end does not strictly follow start.
func NewInterval(start, end time.Time) (TimeInterval, error) {
	if !end.After(start) {
		return TimeInterval{}, polygonerr.InvalidIntervalf("end %s does not follow start %s", end, start)
	}
	return TimeInterval{Start: start, End: &end}, nil
}

// NewOpenInterval constructs an open-ended interval [start, +inf).
func NewOpenInterval(start time.Time) TimeInterval {
	return TimeInterval{Start: start}
}

// Closed reports whether the interval has an end.
func (iv TimeInterval) Closed() bool {
	return iv.End != nil
}

// Contains reports whether t falls within [Start, End).
func (iv TimeInterval) Contains(t time.Time) bool {
	if t.Before(iv.Start) {
		return false
	}
	if iv.End == nil {
		return true
	}
	return t.Before(*iv.End)
}

// Intersects reports whether the interval [iv.Start, iv.End) intersects
// [t1, t2]: iv.Start <= t2 && (iv.End is nil || iv.End >= t1).
func (iv TimeInterval) Intersects(t1, t2 time.Time) bool {
	if iv.Start.After(t2) {
		return false
	}
	if iv.End == nil {
		return true
	}
	return !iv.End.Before(t1)
}

// WithEnd returns a copy of the interval closed at end.
func (iv TimeInterval) WithEnd(end time.Time) TimeInterval {
	return TimeInterval{Start: iv.Start, End: &end}
}
