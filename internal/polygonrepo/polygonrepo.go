// Package polygonrepo is the repository facade: a narrow id -> polygon
// mapping consumed by polygonsvc. Modeled on the teacher's
// internal/geospatial.Store interface-over-map-of-structs shape, but
// in-memory rather than Postgres-backed, per this spec's non-goal on
// durable storage.
package polygonrepo

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sells-group/temporal-polygon/internal/polygonerr"
	"github.com/sells-group/temporal-polygon/internal/temporal"
)

// Repository is the narrow id -> polygon contract polygonsvc depends
// on, so the in-memory map backing it can be swapped for another
// implementation without touching service logic.
type Repository interface {
	Put(p *temporal.TemporalPolygon)
	Get(id uuid.UUID) (*temporal.TemporalPolygon, bool)
	Delete(id uuid.UUID)
	All() []*temporal.TemporalPolygon
}

// MemRepository is an in-memory Repository guarded by its own
// reader/writer lock. polygonsvc takes no registry lock of its own, so
// this lock is the registry lock: Put and Delete take the writer side,
// Get and All the reader side.
type MemRepository struct {
	mu       sync.RWMutex
	polygons map[uuid.UUID]*temporal.TemporalPolygon
}

// NewMemRepository constructs an empty in-memory repository.
func NewMemRepository() *MemRepository {
	return &MemRepository{polygons: make(map[uuid.UUID]*temporal.TemporalPolygon)}
}

// Put registers or replaces a polygon.
func (r *MemRepository) Put(p *temporal.TemporalPolygon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polygons[p.ID] = p
}

// Get returns the polygon with the given id, if present.
func (r *MemRepository) Get(id uuid.UUID) (*temporal.TemporalPolygon, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.polygons[id]
	return p, ok
}

// Delete removes a polygon. It is not an error to delete an id that is
// not present.
func (r *MemRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.polygons, id)
}

// All returns every registered polygon, in no particular order.
func (r *MemRepository) All() []*temporal.TemporalPolygon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*temporal.TemporalPolygon, 0, len(r.polygons))
	for _, p := range r.polygons {
		out = append(out, p)
	}
	return out
}

// MustGet returns the polygon with the given id or a wrapped
// polygonerr.ErrNotFound.
func MustGet(r Repository, id uuid.UUID) (*temporal.TemporalPolygon, error) {
	p, ok := r.Get(id)
	if !ok {
		return nil, polygonerr.NotFoundf("polygon %s not found", id)
	}
	return p, nil
}
