package temporal

import (
	"sort"
	"time"
)

// PolygonExistsAt reports whether every vertex resolves at t.
func (p *TemporalPolygon) PolygonExistsAt(t time.Time) bool {
	for _, id := range p.VertexIDs {
		v, ok := p.Vertices[id]
		if !ok {
			return false
		}
		if _, ok := v.PositionAt(t); !ok {
			return false
		}
	}
	return true
}

// PolygonExistsInRange reports whether every vertex has at least one
// state whose interval intersects [t1, t2].
func (p *TemporalPolygon) PolygonExistsInRange(t1, t2 time.Time) bool {
	for _, id := range p.VertexIDs {
		v, ok := p.Vertices[id]
		if !ok {
			return false
		}
		found := false
		for _, s := range v.States() {
			if s.Interval.Intersects(t1, t2) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// PolygonExistsForEntireRange is a simplification of a true
// "exists throughout" check: it only verifies both endpoints resolve.
// This is a documented limitation (spec §4.4/§9): it does not detect
// interior gaps in coverage, and that is intentional — preserve this
// behavior rather than strengthening it.
func (p *TemporalPolygon) PolygonExistsForEntireRange(t1, t2 time.Time) bool {
	return p.PolygonExistsAt(t1) && p.PolygonExistsAt(t2)
}

// ChangeTimesInRange returns the sorted, de-duplicated set containing t1,
// t2, and every interval start/end of every state of every vertex that
// falls within [t1, t2].
func (p *TemporalPolygon) ChangeTimesInRange(t1, t2 time.Time) []time.Time {
	seen := make(map[int64]time.Time)
	add := func(t time.Time) {
		if t.Before(t1) || t.After(t2) {
			return
		}
		seen[t.UnixNano()] = t
	}

	add(t1)
	add(t2)
	for _, id := range p.VertexIDs {
		v, ok := p.Vertices[id]
		if !ok {
			continue
		}
		for _, s := range v.States() {
			add(s.Interval.Start)
			if s.Interval.End != nil {
				add(*s.Interval.End)
			}
		}
	}

	out := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// HistorySample is one sampled reconstruction within a PolygonHistory
// call.
type HistorySample struct {
	Time   time.Time
	Points []Point
}

// PolygonHistory samples reconstructions across [t1, t2]. If step is
// positive, it samples at t1, t1+step, ... up to t2; otherwise it samples
// at each time in ChangeTimesInRange. Times where reconstruction fails
// (spec's MissingState) are silently omitted.
func (p *TemporalPolygon) PolygonHistory(t1, t2 time.Time, step time.Duration) []HistorySample {
	var times []time.Time
	if step > 0 {
		for t := t1; !t.After(t2); t = t.Add(step) {
			times = append(times, t)
		}
	} else {
		times = p.ChangeTimesInRange(t1, t2)
	}

	out := make([]HistorySample, 0, len(times))
	for _, t := range times {
		points, err := p.ReconstructAt(t)
		if err != nil {
			continue
		}
		out = append(out, HistorySample{Time: t, Points: points})
	}
	return out
}
