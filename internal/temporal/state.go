package temporal

import "time"

// StateKind discriminates the three VertexState flavors.
type StateKind int

const (
	// StateAbsolute carries an absolute position.
	StateAbsolute StateKind = iota
	// StateDelta carries an offset relative to the previously-resolved
	// position.
	StateDelta
	// StateFunction carries a closed-form TemporalFunction.
	StateFunction
)

// VertexState is one of Absolute, Delta, or Function, valid over
// Interval. GroupedVertexIDs is orthogonal data: the ids of sibling
// vertices that received an equivalent state in the same batch update
// (see UpdateVerticesWithSameDelta); it is not part of equivalence.
type VertexState struct {
	Kind     StateKind
	Interval TimeInterval

	// Absolute carries the resolved point when Kind == StateAbsolute.
	Absolute Point

	// Delta carries the offset when Kind == StateDelta.
	Delta Point

	// Function carries the closed-form function when Kind == StateFunction.
	Function TemporalFunction

	// GroupedVertexIDs lists sibling vertex ids that share this state's
	// batch origin. Nil unless this state is a batch "owner".
	GroupedVertexIDs []int
}

// Equivalent reports whether two states represent the same change: same
// flavor, same interval, and same absolute point / delta. Function states
// never compare equivalent to anything, including each other.
// GroupedVertexIDs is ignored.
func (s VertexState) Equivalent(other VertexState) bool {
	if s.Kind != other.Kind {
		return false
	}
	if !s.Interval.Start.Equal(other.Interval.Start) {
		return false
	}
	if (s.Interval.End == nil) != (other.Interval.End == nil) {
		return false
	}
	if s.Interval.End != nil && !s.Interval.End.Equal(*other.Interval.End) {
		return false
	}
	switch s.Kind {
	case StateAbsolute:
		return s.Absolute == other.Absolute
	case StateDelta:
		return s.Delta == other.Delta
	case StateFunction:
		return false
	default:
		return false
	}
}

// closedAt returns a copy of s with Interval closed at newStart, preserving
// its flavor and payload — used to close a previously open-ended state on
// append (invariant I4).
func (s VertexState) closedAt(newStart time.Time) VertexState {
	closed := s
	closed.Interval = s.Interval.WithEnd(newStart)
	return closed
}
