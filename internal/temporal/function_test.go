package temporal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinearFunctionPositionAt(t *testing.T) {
	t0 := time.Unix(0, 0)
	fn := LinearFunction{RefPoint: Point{X: 0, Y: 0}, T0: t0, VX: 1, VY: 2}

	p, err := fn.PositionAt(t0)
	assert.NoError(t, err)
	assert.Equal(t, Point{X: 0, Y: 0}, p)

	p, err = fn.PositionAt(t0.Add(10 * time.Second))
	assert.NoError(t, err)
	assert.Equal(t, Point{X: 10, Y: 20}, p)

	assert.Equal(t, FunctionLinear, fn.Kind())
}

func TestCircularFunctionPositionAt(t *testing.T) {
	t0 := time.Unix(0, 0)
	fn := CircularFunction{Center: Point{X: 0, Y: 0}, T0: t0, Radius: 10, Omega: math.Pi / 2, Phi: 0}

	p, err := fn.PositionAt(t0)
	assert.NoError(t, err)
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)

	// Quarter period later (omega*dt = pi/2) orbits to (0, 10).
	p, err = fn.PositionAt(t0.Add(1 * time.Second))
	assert.NoError(t, err)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 10, p.Y, 1e-9)

	assert.Equal(t, FunctionCircular, fn.Kind())
}

func TestOpaqueFunctionPositionAt(t *testing.T) {
	t0 := time.Unix(0, 0)
	fn := OpaqueFunction{
		RefPoint: Point{X: 1, Y: 1},
		T0:       t0,
		FX:       func(t time.Time) float64 { return float64(t.Unix()) },
		FY:       func(t time.Time) float64 { return float64(t.Unix()) * 2 },
	}

	p, err := fn.PositionAt(t0.Add(5 * time.Second))
	assert.NoError(t, err)
	assert.Equal(t, Point{X: 5, Y: 10}, p)
	assert.Equal(t, FunctionOpaque, fn.Kind())

	// Nil closures return TimeOutOfRange rather than panicking.
	empty := OpaqueFunction{}
	_, err = empty.PositionAt(t0)
	assert.Error(t, err)
}
