package polygonsvc

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/temporal-polygon/internal/temporal"
)

// ChangeKind discriminates the PolygonChanged notification's cause.
type ChangeKind int

const (
	// Created fires after a polygon is first registered.
	Created ChangeKind = iota
	// Updated fires after a batch vertex update.
	Updated
	// VertexUpdated fires after a single-vertex update.
	VertexUpdated
	// Deleted fires after a polygon is removed.
	Deleted
)

// PolygonChanged is emitted after any write that creates, mutates, or
// removes a polygon. Polygon is nil for Deleted.
type PolygonChanged struct {
	PolygonID uuid.UUID
	Kind      ChangeKind
	Polygon   *temporal.TemporalPolygon
}

// VertexChanged is emitted after a single vertex's history is appended
// to, in addition to the accompanying PolygonChanged.
type VertexChanged struct {
	PolygonID  uuid.UUID
	VertexID   int
	ChangeTime time.Time
	NewPos     temporal.Point
}

// PolygonObserver receives PolygonChanged notifications.
type PolygonObserver func(PolygonChanged)

// VertexObserver receives VertexChanged notifications.
type VertexObserver func(VertexChanged)

// observers is the synchronous notification list (spec §4.7/§5):
// handlers run on the writer's goroutine after state is committed and
// caches invalidated, and must not call back into mutating operations on
// the same polygon (reentrancy is unsupported).
type observers struct {
	polygonObservers []PolygonObserver
	vertexObservers  []VertexObserver
}

func (o *observers) onPolygonChanged(e PolygonChanged) {
	for _, fn := range o.polygonObservers {
		fn(e)
	}
}

func (o *observers) onVertexChanged(e VertexChanged) {
	for _, fn := range o.vertexObservers {
		fn(e)
	}
}
