package polygonerr

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelWrappersMatchViaErrorsIs(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"NotFoundf", NotFoundf("polygon %s not found", "p1"), ErrNotFound},
		{"InvalidArgumentf", InvalidArgumentf("missing initial point for vertex %d", 3), ErrInvalidArgument},
		{"InvalidIntervalf", InvalidIntervalf("end %s does not follow start", "t1"), ErrInvalidInterval},
		{"MissingStatef", MissingStatef("vertex %d has no state at %s", 2, "t1"), ErrMissingState},
		{"TimeOutOfRangef", TimeOutOfRangef("opaque function has no captured closure"), ErrTimeOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, errors.Is(tc.err, tc.sentinel))
			assert.True(t, eris.Is(tc.err, tc.sentinel))
		})
	}
}

func TestSentinelWrappersDoNotCrossMatch(t *testing.T) {
	assert.False(t, errors.Is(NotFoundf("x"), ErrInvalidArgument))
	assert.False(t, errors.Is(InvalidArgumentf("x"), ErrNotFound))
	assert.False(t, errors.Is(MissingStatef("x"), ErrTimeOutOfRange))
}

func TestInvalidPolygonErrorAs(t *testing.T) {
	reasons := []string{"polygon must have at least 3 vertices", "polygon edges self-intersect"}
	err := NewInvalidPolygon(reasons)

	var ipe *InvalidPolygonError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, reasons, ipe.Reasons)
	assert.Contains(t, ipe.Error(), "invalid polygon")
}

func TestInvalidPolygonErrorAsFailsForOtherKinds(t *testing.T) {
	var ipe *InvalidPolygonError
	assert.False(t, errors.As(NotFoundf("polygon missing"), &ipe))
}
