// Package polygonsvc is the service facade (C10): it orchestrates the
// vertex history, polygon topology, precomputation table, and LRU
// cache packages behind the public operation set spec §4.7 defines,
// owns the reader/writer concurrency discipline of spec §5, and emits
// synchronous change notifications after each write.
package polygonsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/temporal-polygon/internal/geojsonfmt"
	"github.com/sells-group/temporal-polygon/internal/geomutil"
	"github.com/sells-group/temporal-polygon/internal/polygonerr"
	"github.com/sells-group/temporal-polygon/internal/polygonrepo"
	"github.com/sells-group/temporal-polygon/internal/precompute"
	"github.com/sells-group/temporal-polygon/internal/reconcache"
	"github.com/sells-group/temporal-polygon/internal/temporal"
)

// Service is the public entry point for the temporal polygon store.
// Multiple independent Service instances are legal: there is no global
// mutable state (spec §9).
type Service struct {
	repo    polygonrepo.Repository
	cache   *reconcache.Cache
	precomp *precompute.Table

	sf singleflight.Group

	obsMu sync.Mutex
	obs   observers

	log *zap.Logger
}

// Option configures a Service at construction.
type Option func(*Service)

// WithCacheCapacity sets the LRU reconstruction cache's capacity.
// Defaults to reconcache.DefaultCapacity.
func WithCacheCapacity(capacity int) Option {
	return func(s *Service) { s.cache = reconcache.New(capacity) }
}

// WithPrecomputeRate caps precompute_marked_times' materialization rate
// in materializations per second. <= 0 means unlimited.
func WithPrecomputeRate(perSecond float64) Option {
	return func(s *Service) { s.precomp = precompute.NewTable(perSecond) }
}

// WithLogger overrides the logger used for write-path diagnostics.
// Defaults to zap.L(), the global logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New constructs a Service backed by an in-memory repository.
func New(opts ...Option) *Service {
	s := &Service{
		repo:    polygonrepo.NewMemRepository(),
		cache:   reconcache.New(reconcache.DefaultCapacity),
		precomp: precompute.NewTable(0),
		log:     zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnPolygonChanged registers a synchronous observer for PolygonChanged
// events. Handlers run on the writer's goroutine and must not call back
// into mutating Service operations on the same polygon.
func (s *Service) OnPolygonChanged(fn PolygonObserver) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.obs.polygonObservers = append(s.obs.polygonObservers, fn)
}

// OnVertexChanged registers a synchronous observer for VertexChanged events.
func (s *Service) OnVertexChanged(fn VertexObserver) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.obs.vertexObservers = append(s.obs.vertexObservers, fn)
}

func (s *Service) notifyPolygon(e PolygonChanged) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.obs.onPolygonChanged(e)
}

func (s *Service) notifyVertex(e VertexChanged) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.obs.onVertexChanged(e)
}

// CreatePolygon validates and registers a new polygon: at least 3
// vertices, no collinear consecutive triple, no self-intersection
// (spec §7 InvalidPolygon), with an initial absolute state for every
// vertex at tInit.
func (s *Service) CreatePolygon(id uuid.UUID, vertexIDs []int, initialPoints map[int]temporal.Point, tInit time.Time, coordSystem temporal.CoordSystem) (*temporal.TemporalPolygon, error) {
	ordered := make([]temporal.Point, 0, len(vertexIDs))
	for _, vid := range vertexIDs {
		p, ok := initialPoints[vid]
		if !ok {
			return nil, polygonerr.InvalidArgumentf("missing initial point for vertex %d", vid)
		}
		ordered = append(ordered, p)
	}
	if reasons := geomutil.Validate(ordered); len(reasons) > 0 {
		return nil, polygonerr.NewInvalidPolygon(reasons)
	}

	p, err := temporal.NewTemporalPolygon(id, vertexIDs, initialPoints, tInit, coordSystem)
	if err != nil {
		return nil, err
	}

	s.repo.Put(p)
	s.log.Info("polygon created", zap.String("polygon_id", id.String()), zap.Int("vertices", len(vertexIDs)))
	s.notifyPolygon(PolygonChanged{PolygonID: id, Kind: Created, Polygon: p})
	return p, nil
}

// Register adds an already-constructed polygon (e.g. one decoded by
// polygonjson, carrying its full history) to the store without running
// the initial-state validation CreatePolygon performs. Emits Created.
func (s *Service) Register(p *temporal.TemporalPolygon) {
	s.repo.Put(p)
	s.notifyPolygon(PolygonChanged{PolygonID: p.ID, Kind: Created, Polygon: p})
}

// GetPolygon returns the polygon with the given id.
func (s *Service) GetPolygon(id uuid.UUID) (*temporal.TemporalPolygon, error) {
	return polygonrepo.MustGet(s.repo, id)
}

// GetAllPolygons returns every registered polygon.
func (s *Service) GetAllPolygons() []*temporal.TemporalPolygon {
	return s.repo.All()
}

// RemovePolygon deletes a polygon and evicts its cache and
// precomputation entries.
func (s *Service) RemovePolygon(id uuid.UUID) error {
	if _, ok := s.repo.Get(id); !ok {
		return polygonerr.NotFoundf("polygon %s not found", id)
	}
	s.repo.Delete(id)
	s.cache.Invalidate(id)
	s.precomp.Clear(id)
	s.notifyPolygon(PolygonChanged{PolygonID: id, Kind: Deleted})
	return nil
}

// GetPolygonAt reconstructs a polygon at t via the three-tier read path
// of spec §4.7: precomputation table, then LRU cache, then a fresh
// reconstruction under the vertex locks, populating the LRU cache on
// the way out. Concurrent callers racing on the same (pid, t) cache
// miss are collapsed into a single reconstruction via singleflight, so
// a burst of readers hitting an uncached instant does not each redo the
// vertex walk.
func (s *Service) GetPolygonAt(id uuid.UUID, t time.Time) ([]temporal.Point, error) {
	if points, ok := s.precomp.TryGet(id, t); ok {
		return points, nil
	}
	if points, ok := s.cache.Get(id, t); ok {
		return points, nil
	}

	p, err := polygonrepo.MustGet(s.repo, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s@%d", id, t.UnixNano())
	v, err, _ := s.sf.Do(key, func() (any, error) {
		points, err := p.ReconstructAt(t)
		if err != nil {
			return nil, err
		}
		s.cache.Put(id, t, points)
		return points, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]temporal.Point(nil), v.([]temporal.Point)...), nil
}

// GetVertexPosition resolves a single vertex's position at t, bypassing
// the polygon-level caches (those cache whole reconstructions).
func (s *Service) GetVertexPosition(id uuid.UUID, vertexID int, t time.Time) (temporal.Point, error) {
	p, err := polygonrepo.MustGet(s.repo, id)
	if err != nil {
		return temporal.Point{}, err
	}
	v, ok := p.Vertex(vertexID)
	if !ok {
		return temporal.Point{}, polygonerr.NotFoundf("vertex %d not found in polygon %s", vertexID, id)
	}
	pos, ok := v.PositionAt(t)
	if !ok {
		return temporal.Point{}, polygonerr.MissingStatef("vertex %d has no state at %s", vertexID, t)
	}
	return pos, nil
}

// invalidateWrite drops the LRU and precomputed entries for pid after a
// write, per spec §4.7's write path: marks are retained.
func (s *Service) invalidateWrite(pid uuid.UUID) {
	s.cache.Invalidate(pid)
	s.precomp.Invalidate(pid)
}

// UpdateVertex applies a single vertex update (spec §4.2's update
// policy: delta vs. absolute by threshold), then invalidates the
// polygon's cached reconstructions and notifies observers.
func (s *Service) UpdateVertex(id uuid.UUID, vertexID int, newPoint temporal.Point, tChange time.Time, useDelta bool, deltaThreshold float64) error {
	p, err := polygonrepo.MustGet(s.repo, id)
	if err != nil {
		return err
	}
	v, ok := p.Vertex(vertexID)
	if !ok {
		return polygonerr.NotFoundf("vertex %d not found in polygon %s", vertexID, id)
	}

	temporal.UpdateVertex(v, newPoint, tChange, useDelta, deltaThreshold)
	s.invalidateWrite(id)

	s.log.Debug("vertex updated",
		zap.String("polygon_id", id.String()),
		zap.Int("vertex_id", vertexID),
		zap.Time("change_time", tChange))

	s.notifyVertex(VertexChanged{PolygonID: id, VertexID: vertexID, ChangeTime: tChange, NewPos: newPoint})
	s.notifyPolygon(PolygonChanged{PolygonID: id, Kind: VertexUpdated, Polygon: p})
	return nil
}

// UpdateVerticesWithSameDelta applies one delta to every listed vertex
// at tChange (spec §4.2's batch shared-delta update), concurrently
// across vertices via errgroup — independent vertex writes never
// serialize against each other since each Vertex guards only its own
// history (spec §5) — then invalidates caches once for the whole
// polygon and notifies observers.
func (s *Service) UpdateVerticesWithSameDelta(ctx context.Context, id uuid.UUID, vertexIDs []int, delta temporal.Point, tChange time.Time) error {
	p, err := polygonrepo.MustGet(s.repo, id)
	if err != nil {
		return err
	}
	if len(vertexIDs) == 0 {
		return polygonerr.InvalidArgumentf("update_vertices_with_same_delta requires at least one vertex id")
	}

	g, _ := errgroup.WithContext(ctx)
	for i, vid := range vertexIDs {
		i, vid := i, vid
		g.Go(func() error {
			v, ok := p.Vertex(vid)
			if !ok {
				return polygonerr.NotFoundf("vertex %d not found in polygon %s", vid, id)
			}
			s := temporal.VertexState{
				Kind:     temporal.StateDelta,
				Interval: temporal.NewOpenInterval(tChange),
				Delta:    delta,
			}
			if i == 0 {
				s.GroupedVertexIDs = append([]int(nil), vertexIDs[1:]...)
			}
			v.AddState(s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.invalidateWrite(id)
	s.notifyPolygon(PolygonChanged{PolygonID: id, Kind: Updated, Polygon: p})
	return nil
}

// PolygonsInTimeRange returns the ids of all registered polygons for
// which every vertex has at least one state intersecting [t1, t2].
func (s *Service) PolygonsInTimeRange(t1, t2 time.Time) []uuid.UUID {
	var out []uuid.UUID
	for _, p := range s.repo.All() {
		if p.PolygonExistsInRange(t1, t2) {
			out = append(out, p.ID)
		}
	}
	return out
}

// PolygonsForEntireTimeRange returns the ids of all registered polygons
// for which both t1 and t2 resolve (spec §4.4's documented endpoints-only
// limitation: interior gaps are not detected).
func (s *Service) PolygonsForEntireTimeRange(t1, t2 time.Time) []uuid.UUID {
	var out []uuid.UUID
	for _, p := range s.repo.All() {
		if p.PolygonExistsForEntireRange(t1, t2) {
			out = append(out, p.ID)
		}
	}
	return out
}

// PolygonHistory samples reconstructions of a polygon across [t1, t2].
func (s *Service) PolygonHistory(id uuid.UUID, t1, t2 time.Time, step time.Duration) ([]temporal.HistorySample, error) {
	p, err := polygonrepo.MustGet(s.repo, id)
	if err != nil {
		return nil, err
	}
	return p.PolygonHistory(t1, t2, step), nil
}

// MarkTimeForPrecomputation flags t for future materialization.
func (s *Service) MarkTimeForPrecomputation(id uuid.UUID, t time.Time) error {
	if _, err := polygonrepo.MustGet(s.repo, id); err != nil {
		return err
	}
	s.precomp.Mark(id, t)
	return nil
}

// MarkTimesForPrecomputation flags multiple times for future
// materialization.
func (s *Service) MarkTimesForPrecomputation(id uuid.UUID, times []time.Time) error {
	if _, err := polygonrepo.MustGet(s.repo, id); err != nil {
		return err
	}
	for _, t := range times {
		s.precomp.Mark(id, t)
	}
	return nil
}

// UnmarkTimeForPrecomputation removes a precomputation mark.
func (s *Service) UnmarkTimeForPrecomputation(id uuid.UUID, t time.Time) {
	s.precomp.Unmark(id, t)
}

// GetPrecomputationTimes returns the times currently marked for pid.
func (s *Service) GetPrecomputationTimes(id uuid.UUID) []time.Time {
	return s.precomp.MarkedTimes(id)
}

// PrecomputeMarkedTimes materializes every time currently marked for
// id, reconstructing under the polygon's own vertex locks.
func (s *Service) PrecomputeMarkedTimes(ctx context.Context, id uuid.UUID) error {
	p, err := polygonrepo.MustGet(s.repo, id)
	if err != nil {
		return err
	}
	s.precomp.PrecomputeAllMarked(ctx, id, func(pid uuid.UUID, t time.Time) ([]temporal.Point, error) {
		return p.ReconstructAt(t)
	})
	return nil
}

// PrecomputePolygonAt materializes a single time immediately,
// regardless of whether it is marked.
func (s *Service) PrecomputePolygonAt(id uuid.UUID, t time.Time) error {
	p, err := polygonrepo.MustGet(s.repo, id)
	if err != nil {
		return err
	}
	points, err := p.ReconstructAt(t)
	if err != nil {
		return err
	}
	s.precomp.Precompute(id, t, points)
	return nil
}

// ClearPrecomputations drops both marks and materialized entries for id.
func (s *Service) ClearPrecomputations(id uuid.UUID) {
	s.precomp.Clear(id)
}

// DetectIdenticalChanges groups vertices of a polygon whose state at t
// is equivalent (spec §4.2's identical-change detection).
func (s *Service) DetectIdenticalChanges(id uuid.UUID, t time.Time) ([]temporal.IdenticalChangeGroup, error) {
	p, err := polygonrepo.MustGet(s.repo, id)
	if err != nil {
		return nil, err
	}
	return temporal.DetectIdenticalChanges(p, t), nil
}

// ToGeoJSON reconstructs a polygon at t and emits it as a bare GeoJSON
// geometry.
func (s *Service) ToGeoJSON(id uuid.UUID, t time.Time) ([]byte, error) {
	points, err := s.GetPolygonAt(id, t)
	if err != nil {
		return nil, err
	}
	return geojsonfmt.Geometry(points)
}
