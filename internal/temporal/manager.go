package temporal

import (
	"math"
	"time"
)

// UpdateVertex applies the update policy of spec §4.2: resolve the
// current position, and either append a Delta (if useDelta and the move
// is within deltaThreshold on both axes) or an Absolute state, open-ended
// from tChange.
//
// Small moves compress into a delta (the magnitude is small and
// quantizable); large moves re-anchor to an absolute point to bound
// accumulated drift and shorten future resolution walks.
func UpdateVertex(v *Vertex, newPoint Point, tChange time.Time, useDelta bool, deltaThreshold float64) {
	pCur, ok := v.PositionAt(tChange)
	if !ok {
		if states := v.States(); len(states) > 0 && tChange.Before(states[0].Interval.Start) {
			pCur, ok = firstResolvedPoint(states[0])
		}
	}

	if useDelta && ok {
		dx := math.Abs(newPoint.X - pCur.X)
		dy := math.Abs(newPoint.Y - pCur.Y)
		if math.Max(dx, dy) <= deltaThreshold {
			v.AddState(VertexState{
				Kind:     StateDelta,
				Interval: NewOpenInterval(tChange),
				Delta:    newPoint.Sub(pCur),
			})
			return
		}
	}

	v.AddState(VertexState{
		Kind:     StateAbsolute,
		Interval: NewOpenInterval(tChange),
		Absolute: newPoint,
	})
}

// firstResolvedPoint returns the position a state carries at its own
// interval start, used as a fallback current-position when tChange
// precedes all recorded history.
func firstResolvedPoint(s VertexState) (Point, bool) {
	switch s.Kind {
	case StateAbsolute:
		return s.Absolute, true
	case StateFunction:
		p, err := s.Function.PositionAt(s.Interval.Start)
		return p, err == nil
	default:
		return Point{}, false
	}
}

// UpdateVerticesWithSameDelta applies one delta to all of vertexIDs at
// tChange. The first id in the list becomes the batch "owner": it
// receives a Delta state carrying the remaining ids as
// GroupedVertexIDs; every other vertex receives an equivalent Delta
// state with no group list, avoiding redundancy on the owner (spec
// §4.2).
func UpdateVerticesWithSameDelta(vertices map[int]*Vertex, vertexIDs []int, delta Point, tChange time.Time) {
	for i, id := range vertexIDs {
		v, ok := vertices[id]
		if !ok {
			continue
		}
		s := VertexState{
			Kind:     StateDelta,
			Interval: NewOpenInterval(tChange),
			Delta:    delta,
		}
		if i == 0 {
			s.GroupedVertexIDs = append([]int(nil), vertexIDs[1:]...)
		}
		v.AddState(s)
	}
}

// IdenticalChangeGroup reports a set of vertex ids whose state_at(t) is
// pairwise equivalent.
type IdenticalChangeGroup struct {
	VertexIDs []int
}

// DetectIdenticalChanges groups vertices by the equivalence predicate on
// their state at t (spec §4.2). Only groups of size >= 2 are reported.
// This is for reporting/compression only; it never rewrites history.
func DetectIdenticalChanges(p *TemporalPolygon, t time.Time) []IdenticalChangeGroup {
	type bucket struct {
		rep   VertexState
		ids   []int
	}
	var buckets []bucket

	for _, id := range p.VertexIDs {
		v, ok := p.Vertices[id]
		if !ok {
			continue
		}
		s, ok := v.StateAt(t)
		if !ok {
			continue
		}
		placed := false
		for i := range buckets {
			if buckets[i].rep.Equivalent(s) {
				buckets[i].ids = append(buckets[i].ids, id)
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, bucket{rep: s, ids: []int{id}})
		}
	}

	var groups []IdenticalChangeGroup
	for _, b := range buckets {
		if len(b.ids) >= 2 {
			groups = append(groups, IdenticalChangeGroup{VertexIDs: b.ids})
		}
	}
	return groups
}

// DetectLinearPattern samples the vertex at max(3, floor((tEnd-tStart)/10s))
// evenly spaced instants across [tStart, tEnd], computes velocity from the
// first and last samples, and returns a LinearFunction if every sample's
// per-axis deviation from that line is within tolerance (spec §4.2).
// Returns false if no consistent linear fit exists, or if the vertex
// fails to resolve at any sample instant.
func DetectLinearPattern(v *Vertex, tStart, tEnd time.Time, tolerance float64) (LinearFunction, bool) {
	n := int(tEnd.Sub(tStart).Seconds() / 10)
	if n < 3 {
		n = 3
	}

	samples := make([]Point, n)
	times := make([]time.Time, n)
	step := tEnd.Sub(tStart) / time.Duration(n-1)
	for i := 0; i < n; i++ {
		ti := tStart.Add(step * time.Duration(i))
		if i == n-1 {
			ti = tEnd
		}
		p, ok := v.PositionAt(ti)
		if !ok {
			return LinearFunction{}, false
		}
		samples[i] = p
		times[i] = ti
	}

	dt := times[n-1].Sub(times[0]).Seconds()
	if dt == 0 {
		return LinearFunction{}, false
	}
	vx := (samples[n-1].X - samples[0].X) / dt
	vy := (samples[n-1].Y - samples[0].Y) / dt

	fn := LinearFunction{RefPoint: samples[0], T0: times[0], VX: vx, VY: vy}
	for i, ti := range times {
		predicted, _ := fn.PositionAt(ti)
		if math.Abs(predicted.X-samples[i].X) > tolerance || math.Abs(predicted.Y-samples[i].Y) > tolerance {
			return LinearFunction{}, false
		}
	}

	return fn, true
}
