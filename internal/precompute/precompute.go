// Package precompute implements the precomputation table (tier 1 of
// the read path): marks flag times for future materialization, and
// materialized reconstructions are served straight from memory without
// touching vertex history. Modeled on the teacher's tile materialization
// table (internal/geospatial/tilecache.go), generalized from tile keys
// to (polygon id, time) keys.
package precompute

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sells-group/temporal-polygon/internal/temporal"
)

// Materialized is a precomputed reconstruction plus the wall-clock time
// it was computed, for diagnostics.
type Materialized struct {
	Points     []temporal.Point
	ComputedAt time.Time
}

// ReconstructFunc reconstructs polygon pid at a given time, returning the
// same result as TemporalPolygon.ReconstructAt.
type ReconstructFunc func(pid uuid.UUID, t time.Time) ([]temporal.Point, error)

// Table is the two-map precomputation table of spec §4.5: marks flag
// times for future materialization, precomputed holds materialized
// results. Guarded by a single reader/writer lock; long-running
// materialization work happens outside the write lock by snapshotting
// the mark set first.
type Table struct {
	mu          sync.RWMutex
	marks       map[uuid.UUID]map[int64]time.Time
	precomputed map[uuid.UUID]map[int64]Materialized

	// Limiter paces bulk materialization when non-nil, so
	// PrecomputeAllMarked doesn't peg a CPU core reconstructing every
	// marked time back to back. nil means unlimited.
	Limiter *rate.Limiter
}

// NewTable constructs an empty precomputation table. materializationsPerSecond
// <= 0 means unlimited pacing.
func NewTable(materializationsPerSecond float64) *Table {
	var limiter *rate.Limiter
	if materializationsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(materializationsPerSecond), 1)
	}
	return &Table{
		marks:       make(map[uuid.UUID]map[int64]time.Time),
		precomputed: make(map[uuid.UUID]map[int64]Materialized),
		Limiter:     limiter,
	}
}

// Mark flags (pid, t) for future materialization.
func (tb *Table) Mark(pid uuid.UUID, t time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.marks[pid] == nil {
		tb.marks[pid] = make(map[int64]time.Time)
	}
	tb.marks[pid][t.UnixNano()] = t
}

// Unmark removes a mark without touching any materialized entry.
func (tb *Table) Unmark(pid uuid.UUID, t time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if m := tb.marks[pid]; m != nil {
		delete(m, t.UnixNano())
		if len(m) == 0 {
			delete(tb.marks, pid)
		}
	}
}

// MarkedTimes returns the times currently marked for pid.
func (tb *Table) MarkedTimes(pid uuid.UUID) []time.Time {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	m := tb.marks[pid]
	out := make([]time.Time, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	return out
}

// Precompute stores a materialized reconstruction for (pid, t). points
// is copied, so later caller-side mutation of the slice cannot alias
// the stored entry.
func (tb *Table) Precompute(pid uuid.UUID, t time.Time, points []temporal.Point) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.precomputed[pid] == nil {
		tb.precomputed[pid] = make(map[int64]Materialized)
	}
	tb.precomputed[pid][t.UnixNano()] = Materialized{
		Points:     append([]temporal.Point(nil), points...),
		ComputedAt: time.Now(),
	}
}

// TryGet returns a copy of the materialized reconstruction for (pid, t),
// if present.
func (tb *Table) TryGet(pid uuid.UUID, t time.Time) ([]temporal.Point, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	m, ok := tb.precomputed[pid][t.UnixNano()]
	if !ok {
		return nil, false
	}
	return append([]temporal.Point(nil), m.Points...), true
}

// PrecomputeAllMarked materializes every time currently marked for pid,
// using reconstruct to compute each one. The mark set is snapshotted
// before materialization starts, so concurrent Mark/Unmark calls don't
// race with this pass. Per-time reconstruction errors are swallowed
// (spec §4.5/§7): a failed time is simply left unmaterialized. If a
// Limiter is configured, materialization is paced to at most one
// reconstruction per tick.
func (tb *Table) PrecomputeAllMarked(ctx context.Context, pid uuid.UUID, reconstruct ReconstructFunc) {
	for _, t := range tb.MarkedTimes(pid) {
		if tb.Limiter != nil {
			if err := tb.Limiter.Wait(ctx); err != nil {
				return
			}
		}
		points, err := reconstruct(pid, t)
		if err != nil {
			continue
		}
		tb.Precompute(pid, t, points)
	}
}

// Invalidate drops all precomputed entries for pid; marks are retained
// so a subsequent PrecomputeAllMarked can re-materialize them.
func (tb *Table) Invalidate(pid uuid.UUID) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	delete(tb.precomputed, pid)
}

// Clear drops both marks and precomputed entries for pid.
func (tb *Table) Clear(pid uuid.UUID) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	delete(tb.marks, pid)
	delete(tb.precomputed, pid)
}
