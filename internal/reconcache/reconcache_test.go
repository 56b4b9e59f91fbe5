package reconcache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/temporal-polygon/internal/temporal"
)

func TestBasicGetPut(t *testing.T) {
	c := New(10)
	pid := uuid.New()
	t0 := time.Unix(1_700_000_000, 0)

	_, ok := c.Get(pid, t0)
	assert.False(t, ok)

	points := []temporal.Point{{X: 1, Y: 1}}
	c.Put(pid, t0, points)

	got, ok := c.Get(pid, t0)
	require.True(t, ok)
	assert.Equal(t, points, got)

	// Returned slice is a copy.
	got[0] = temporal.Point{X: 999, Y: 999}
	got2, ok := c.Get(pid, t0)
	require.True(t, ok)
	assert.Equal(t, points, got2)
}

// TestInvariant6CapacityAndInvalidate covers spec invariant 6: the cache
// never exceeds capacity, Invalidate(pid) drops every key for pid, and
// keys for other polygons are untouched.
func TestInvariant6CapacityAndInvalidate(t *testing.T) {
	c := New(3)
	pidA := uuid.New()
	pidB := uuid.New()
	t0 := time.Unix(1_700_000_000, 0)

	c.Put(pidA, t0, []temporal.Point{{X: 1}})
	c.Put(pidA, t0.Add(time.Hour), []temporal.Point{{X: 2}})
	c.Put(pidB, t0, []temporal.Point{{X: 3}})

	assert.Equal(t, 3, c.Len())

	// Exceeding capacity evicts the least-recently-used entry (pidA@t0).
	c.Put(pidB, t0.Add(time.Hour), []temporal.Point{{X: 4}})
	assert.LessOrEqual(t, c.Len(), 3)
	_, ok := c.Get(pidA, t0)
	assert.False(t, ok)

	c.Invalidate(pidA)
	_, ok = c.Get(pidA, t0.Add(time.Hour))
	assert.False(t, ok)

	// pidB's entries are untouched.
	_, ok = c.Get(pidB, t0)
	assert.True(t, ok)
	_, ok = c.Get(pidB, t0.Add(time.Hour))
	assert.True(t, ok)
}

func TestLRUEvictionOrder(t *testing.T) {
	c := New(2)
	pid := uuid.New()
	t0 := time.Unix(1_700_000_000, 0)
	t1 := t0.Add(time.Hour)
	t2 := t1.Add(time.Hour)

	c.Put(pid, t0, []temporal.Point{{X: 0}})
	c.Put(pid, t1, []temporal.Point{{X: 1}})

	// Touch t0 so t1 becomes the least-recently-used entry.
	_, _ = c.Get(pid, t0)

	c.Put(pid, t2, []temporal.Point{{X: 2}})

	_, ok := c.Get(pid, t1)
	assert.False(t, ok, "t1 should have been evicted as least-recently-used")
	_, ok = c.Get(pid, t0)
	assert.True(t, ok)
	_, ok = c.Get(pid, t2)
	assert.True(t, ok)
}

func TestDefaultCapacityAppliedWhenNonPositive(t *testing.T) {
	c := New(0)
	assert.Equal(t, DefaultCapacity, c.Stats().MaxEntries)

	c = New(-5)
	assert.Equal(t, DefaultCapacity, c.Stats().MaxEntries)
}

func TestStatsHitsAndMisses(t *testing.T) {
	c := New(10)
	pid := uuid.New()
	t0 := time.Unix(1_700_000_000, 0)

	_, _ = c.Get(pid, t0) // miss
	c.Put(pid, t0, []temporal.Point{{X: 1}})
	_, _ = c.Get(pid, t0) // hit

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}
