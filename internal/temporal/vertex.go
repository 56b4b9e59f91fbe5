package temporal

import (
	"sort"
	"sync"
	"time"
)

// resolutionEpsilon is subtracted from a delta state's interval start when
// probing a preceding Function state for its boundary position (spec
// §4.1 step 4).
const resolutionEpsilon = time.Nanosecond

// Vertex is a single polygon vertex: a stable id and its ordered state
// history. The state list is guarded by an internal mutex held only
// during AddState, PositionAt, and StateAt (spec §5), so that concurrent
// reads of different vertices never serialize against each other.
type Vertex struct {
	ID int

	mu     sync.Mutex
	states []VertexState
}

// NewVertex creates a vertex with no history.
func NewVertex(id int) *Vertex {
	return &Vertex{ID: id}
}

// AddState appends s to the vertex history. If the current last state is
// open-ended, it is closed at s.Interval.Start before s is appended
// (invariant I4). No ordering check is performed on s.Interval.Start:
// callers are expected to append forward in time; an out-of-order append
// does not crash but may produce overlaps detectable only by an external
// integrity validator (spec §9 — intentionally not enforced here).
func (v *Vertex) AddState(s VertexState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if n := len(v.states); n > 0 && !v.states[n-1].Interval.Closed() {
		v.states[n-1] = v.states[n-1].closedAt(s.Interval.Start)
	}
	v.states = append(v.states, s)
}

// States returns a copy of the vertex's state history in append order,
// which is interval-start order as long as states were appended forward
// in time.
func (v *Vertex) States() []VertexState {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]VertexState, len(v.states))
	copy(out, v.states)
	return out
}

// StateAt returns the state containing t, and whether one was found.
func (v *Vertex) StateAt(t time.Time) (VertexState, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, _, ok := v.findStateAtLocked(t)
	return s, ok
}

// findStateAtLocked implements spec §4.1's find_state_at: binary search
// for the largest index i with states[i].Interval.Start <= t, then walk
// backwards while Start <= t, returning the first state whose interval
// actually contains t. Typical complexity is O(log H); pathological
// overlap among out-of-order appends can force the O(H) fallback walk.
func (v *Vertex) findStateAtLocked(t time.Time) (VertexState, int, bool) {
	n := len(v.states)
	if n == 0 {
		return VertexState{}, -1, false
	}

	i := sort.Search(n, func(i int) bool {
		return v.states[i].Interval.Start.After(t)
	}) - 1
	if i < 0 {
		return VertexState{}, -1, false
	}

	for i >= 0 && !v.states[i].Interval.Start.After(t) {
		if v.states[i].Interval.Contains(t) {
			return v.states[i], i, true
		}
		i--
	}
	return VertexState{}, -1, false
}

// PositionAt resolves the vertex's position at t, walking accumulated
// deltas back to the nearest absolute or function checkpoint (spec
// §4.1). Returns false if no state contains t.
func (v *Vertex) PositionAt(t time.Time) (Point, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, idx, ok := v.findStateAtLocked(t)
	if !ok {
		return Point{}, false
	}

	switch s.Kind {
	case StateFunction:
		p, err := s.Function.PositionAt(t)
		if err != nil {
			return Point{}, false
		}
		return p, true
	case StateAbsolute:
		return s.Absolute, true
	case StateDelta:
		return v.resolveDeltaLocked(s, idx), true
	default:
		return Point{}, false
	}
}

// resolveDeltaLocked implements the forward walk of spec §4.1 step 4:
// accumulate deltas from the nearest preceding absolute or function
// checkpoint, stopping at (but not including) the state at targetIdx.
func (v *Vertex) resolveDeltaLocked(target VertexState, targetIdx int) Point {
	var base Point
	haveBase := false

	for i := 0; i < targetIdx; i++ {
		p := v.states[i]
		if p.Interval.Start.After(target.Interval.Start) {
			break
		}
		switch p.Kind {
		case StateFunction:
			probe := target.Interval.Start.Add(-resolutionEpsilon)
			if p.Interval.Contains(probe) {
				if pos, err := p.Function.PositionAt(probe); err == nil {
					base = pos
					haveBase = true
				}
			}
		case StateAbsolute:
			base = p.Absolute
			haveBase = true
		case StateDelta:
			if haveBase {
				base = base.Add(p.Delta)
			}
		}
	}

	// If no checkpoint was found, base remains the zero point and the
	// result is simply target.Delta — documented as undefined usage by
	// spec §4.1.
	return base.Add(target.Delta)
}
