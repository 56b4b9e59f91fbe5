// Package polygonerr defines the error kinds shared across the temporal
// polygon store: lookup failures, argument validation, geometric
// validation, interval construction, and reconstruction failures.
package polygonerr

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Sentinel errors identifying the error kinds of the temporal polygon
// store. Callers match against these with eris.Is / errors.Is.
var (
	// ErrNotFound indicates a polygon or vertex id lookup failed.
	ErrNotFound = eris.New("not found")

	// ErrInvalidArgument indicates an unknown id, empty input, a
	// non-positive cache size, or a reversed time range.
	ErrInvalidArgument = eris.New("invalid argument")

	// ErrInvalidInterval indicates a TimeInterval with end <= start.
	ErrInvalidInterval = eris.New("invalid interval")

	// ErrMissingState indicates reconstruction at a time for which at
	// least one vertex has no containing state.
	ErrMissingState = eris.New("missing state")

	// ErrTimeOutOfRange indicates a Function state was evaluated outside
	// its interval.
	ErrTimeOutOfRange = eris.New("time out of range")
)

// InvalidPolygonError reports the reasons a candidate polygon failed
// geometric validation during creation (too few vertices, a collinear
// triple, a self-intersection).
type InvalidPolygonError struct {
	Reasons []string
}

func (e *InvalidPolygonError) Error() string {
	return fmt.Sprintf("invalid polygon: %v", e.Reasons)
}

// NotFoundf wraps ErrNotFound with a formatted message identifying what
// was not found (e.g. a polygon id or vertex id).
func NotFoundf(format string, args ...any) error {
	return eris.Wrapf(ErrNotFound, format, args...)
}

// InvalidArgumentf wraps ErrInvalidArgument with a formatted message.
func InvalidArgumentf(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidArgument, format, args...)
}

// InvalidIntervalf wraps ErrInvalidInterval with a formatted message.
func InvalidIntervalf(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidInterval, format, args...)
}

// MissingStatef wraps ErrMissingState with a formatted message.
func MissingStatef(format string, args ...any) error {
	return eris.Wrapf(ErrMissingState, format, args...)
}

// TimeOutOfRangef wraps ErrTimeOutOfRange with a formatted message.
func TimeOutOfRangef(format string, args ...any) error {
	return eris.Wrapf(ErrTimeOutOfRange, format, args...)
}

// NewInvalidPolygon constructs an InvalidPolygonError from the given
// validation failure reasons.
func NewInvalidPolygon(reasons []string) error {
	return &InvalidPolygonError{Reasons: reasons}
}
