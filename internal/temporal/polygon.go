package temporal

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/temporal-polygon/internal/polygonerr"
)

// CoordSystem identifies the coordinate system a polygon's points are
// expressed in.
type CoordSystem int

const (
	// Cartesian indicates plain (x, y) coordinates.
	Cartesian CoordSystem = iota
	// Geographic indicates (longitude, latitude) coordinates.
	Geographic
)

func (c CoordSystem) String() string {
	if c == Geographic {
		return "Geographic"
	}
	return "Cartesian"
}

// TemporalPolygon is an immutable vertex-id topology over a map of
// time-varying vertices. The id sequence never mutates after creation
// (invariant I7); only vertex histories mutate.
type TemporalPolygon struct {
	ID         uuid.UUID
	VertexIDs  []int
	Vertices   map[int]*Vertex
	CoordSystem CoordSystem
}

// NewTemporalPolygon constructs a polygon from an ordered vertex-id
// sequence and an initial absolute point for each id, all valid from
// tInit onward. Returns polygonerr.ErrInvalidArgument if fewer than 3
// vertex ids are given or initialPoints is missing an entry.
func NewTemporalPolygon(id uuid.UUID, vertexIDs []int, initialPoints map[int]Point, tInit time.Time, coordSystem CoordSystem) (*TemporalPolygon, error) {
	if len(vertexIDs) < 3 {
		return nil, polygonerr.InvalidArgumentf("polygon needs at least 3 vertices, got %d", len(vertexIDs))
	}

	ids := make([]int, len(vertexIDs))
	copy(ids, vertexIDs)

	vertices := make(map[int]*Vertex, len(ids))
	for _, id := range ids {
		p, ok := initialPoints[id]
		if !ok {
			return nil, polygonerr.InvalidArgumentf("missing initial point for vertex %d", id)
		}
		v := NewVertex(id)
		v.AddState(VertexState{
			Kind:     StateAbsolute,
			Interval: NewOpenInterval(tInit),
			Absolute: p,
		})
		vertices[id] = v
	}

	return &TemporalPolygon{
		ID:          id,
		VertexIDs:   ids,
		Vertices:    vertices,
		CoordSystem: coordSystem,
	}, nil
}

// ReconstructAt resolves every vertex at t, in topology order. Returns
// polygonerr.ErrMissingState if any vertex fails to resolve.
func (p *TemporalPolygon) ReconstructAt(t time.Time) ([]Point, error) {
	points := make([]Point, 0, len(p.VertexIDs))
	for _, id := range p.VertexIDs {
		v, ok := p.Vertices[id]
		if !ok {
			return nil, polygonerr.NotFoundf("vertex %d not found in polygon %s", id, p.ID)
		}
		pt, ok := v.PositionAt(t)
		if !ok {
			return nil, polygonerr.MissingStatef("vertex %d has no state at %s", id, t)
		}
		points = append(points, pt)
	}
	return points, nil
}

// Vertex returns the vertex with the given id, and whether it exists in
// this polygon's topology.
func (p *TemporalPolygon) Vertex(id int) (*Vertex, bool) {
	v, ok := p.Vertices[id]
	return v, ok
}
