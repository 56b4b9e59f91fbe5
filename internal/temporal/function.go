package temporal

import (
	"math"
	"time"

	"github.com/sells-group/temporal-polygon/internal/polygonerr"
)

// FunctionKind discriminates the TemporalFunction variants.
type FunctionKind int

const (
	// FunctionLinear moves at a constant velocity from a reference point.
	FunctionLinear FunctionKind = iota
	// FunctionCircular orbits a center point at constant angular velocity.
	FunctionCircular
	// FunctionOpaque wraps caller-supplied closures; not serializable.
	FunctionOpaque
)

// TemporalFunction computes an absolute position at an arbitrary time. It
// is self-contained: evaluating it requires no history lookup.
type TemporalFunction interface {
	// PositionAt returns the function's position at t.
	PositionAt(t time.Time) (Point, error)
	// Kind identifies the concrete variant.
	Kind() FunctionKind
}

// LinearFunction moves at constant velocity (vx, vy) per second from
// RefPoint at T0.
type LinearFunction struct {
	RefPoint Point
	T0       time.Time
	VX, VY   float64
}

// PositionAt implements TemporalFunction.
func (f LinearFunction) PositionAt(t time.Time) (Point, error) {
	dt := t.Sub(f.T0).Seconds()
	return Point{X: f.RefPoint.X + f.VX*dt, Y: f.RefPoint.Y + f.VY*dt}, nil
}

// Kind implements TemporalFunction.
func (f LinearFunction) Kind() FunctionKind { return FunctionLinear }

// CircularFunction orbits Center at Radius with angular velocity Omega
// (radians/sec) and phase Phi at T0.
type CircularFunction struct {
	Center Point
	T0     time.Time
	Radius float64
	Omega  float64
	Phi    float64
}

// PositionAt implements TemporalFunction.
func (f CircularFunction) PositionAt(t time.Time) (Point, error) {
	dt := t.Sub(f.T0).Seconds()
	angle := f.Phi + f.Omega*dt
	return Point{
		X: f.Center.X + f.Radius*math.Cos(angle),
		Y: f.Center.Y + f.Radius*math.Sin(angle),
	}, nil
}

// Kind implements TemporalFunction.
func (f CircularFunction) Kind() FunctionKind { return FunctionCircular }

// OpaqueFunction wraps caller-supplied closures that are not
// serializable. A deserialized opaque slot falls back to the absolute
// position captured alongside it (see polygonjson).
type OpaqueFunction struct {
	RefPoint Point
	T0       time.Time
	FX, FY   func(t time.Time) float64
}

// PositionAt implements TemporalFunction.
func (f OpaqueFunction) PositionAt(t time.Time) (Point, error) {
	if f.FX == nil || f.FY == nil {
		return Point{}, polygonerr.TimeOutOfRangef("opaque function has no captured closure")
	}
	return Point{X: f.FX(t), Y: f.FY(t)}, nil
}

// Kind implements TemporalFunction.
func (f OpaqueFunction) Kind() FunctionKind { return FunctionOpaque }
