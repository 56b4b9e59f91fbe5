package polygonsvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/temporal-polygon/internal/temporal"
)

func unitSquare() ([]int, map[int]temporal.Point) {
	return []int{0, 1, 2, 3}, map[int]temporal.Point{
		0: {X: 0, Y: 0}, 1: {X: 10, Y: 0}, 2: {X: 10, Y: 10}, 3: {X: 0, Y: 10},
	}
}

func TestCreatePolygonValidatesGeometry(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)

	ids, points := unitSquare()
	_, err := svc.CreatePolygon(uuid.New(), ids, points, t0, temporal.Cartesian)
	require.NoError(t, err)

	collinear := map[int]temporal.Point{0: {X: 0, Y: 0}, 1: {X: 1, Y: 0}, 2: {X: 2, Y: 0}}
	_, err = svc.CreatePolygon(uuid.New(), []int{0, 1, 2}, collinear, t0, temporal.Cartesian)
	assert.Error(t, err)
}

func TestGetPolygonNotFound(t *testing.T) {
	svc := New()
	_, err := svc.GetPolygon(uuid.New())
	assert.Error(t, err)
}

func TestGetPolygonAtThreeTierReadPath(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)
	ids, points := unitSquare()

	p, err := svc.CreatePolygon(uuid.New(), ids, points, t0, temporal.Cartesian)
	require.NoError(t, err)

	// Tier 3: fresh reconstruction, also populates the LRU cache.
	got, err := svc.GetPolygonAt(p.ID, t0)
	require.NoError(t, err)
	assert.Equal(t, temporal.Point{X: 0, Y: 0}, got[0])

	stats := svc.cache.Stats()
	assert.Equal(t, 1, stats.Entries)

	// Tier 2: now served from the LRU cache.
	got2, err := svc.GetPolygonAt(p.ID, t0)
	require.NoError(t, err)
	assert.Equal(t, got, got2)

	// Tier 1: a precomputed entry takes priority over everything.
	svc.precomp.Precompute(p.ID, t0, []temporal.Point{{X: 42, Y: 42}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	got3, err := svc.GetPolygonAt(p.ID, t0)
	require.NoError(t, err)
	assert.Equal(t, temporal.Point{X: 42, Y: 42}, got3[0])
}

func TestUpdateVertexInvalidatesCaches(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)
	ids, points := unitSquare()

	p, err := svc.CreatePolygon(uuid.New(), ids, points, t0, temporal.Cartesian)
	require.NoError(t, err)

	_, err = svc.GetPolygonAt(p.ID, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.cache.Stats().Entries)

	require.NoError(t, svc.UpdateVertex(p.ID, 0, temporal.Point{X: 2, Y: 2}, t0.Add(time.Hour), true, 100))
	assert.Equal(t, 0, svc.cache.Stats().Entries)

	got, err := svc.GetPolygonAt(p.ID, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, temporal.Point{X: 2, Y: 2}, got[0])
}

func TestUpdateVerticesWithSameDelta(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)
	id := uuid.New()
	_, err := svc.CreatePolygon(id, []int{0, 1, 2}, map[int]temporal.Point{0: {X: 0, Y: 0}, 1: {X: 10, Y: 0}, 2: {X: 5, Y: 10}}, t0, temporal.Cartesian)
	require.NoError(t, err)

	t1 := t0.Add(time.Hour)
	require.NoError(t, svc.UpdateVerticesWithSameDelta(context.Background(), id, []int{0, 1, 2}, temporal.Point{X: 1, Y: 1}, t1))

	got, err := svc.GetPolygonAt(id, t1)
	require.NoError(t, err)
	assert.Equal(t, []temporal.Point{{X: 1, Y: 1}, {X: 11, Y: 1}, {X: 6, Y: 11}}, got)
}

// TestScenarioS6PrecomputationConsistency covers spec scenario S6 at
// the service level: a precomputed entry must be invalidated by a
// subsequent write that postdates it.
func TestScenarioS6PrecomputationConsistency(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)
	ids, points := unitSquare()
	p, err := svc.CreatePolygon(uuid.New(), ids, points, t0, temporal.Cartesian)
	require.NoError(t, err)

	t1 := t0.Add(time.Hour)
	t2 := t1.Add(time.Hour)

	require.NoError(t, svc.MarkTimeForPrecomputation(p.ID, t1))
	require.NoError(t, svc.PrecomputeMarkedTimes(context.Background(), p.ID))

	before, err := svc.GetPolygonAt(p.ID, t1)
	require.NoError(t, err)
	assert.Equal(t, temporal.Point{X: 0, Y: 0}, before[0])

	require.NoError(t, svc.UpdateVertex(p.ID, 0, temporal.Point{X: 99, Y: 99}, t2, false, 0))

	after, err := svc.GetPolygonAt(p.ID, t1)
	require.NoError(t, err)
	assert.Equal(t, temporal.Point{X: 0, Y: 0}, after[0], "t1 precedes the t2 write and should be unaffected")

	// Marks survive the write; the entry was dropped, not the mark.
	assert.ElementsMatch(t, []time.Time{t1}, svc.GetPrecomputationTimes(p.ID))
}

// TestScenarioS7PolygonsInTimeRange covers spec scenario S7.
func TestScenarioS7PolygonsInTimeRange(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)
	t1 := t0.Add(time.Hour)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	a, err := svc.CreatePolygon(uuid.New(), []int{0, 1, 2}, map[int]temporal.Point{0: {X: 0, Y: 0}, 1: {X: 1, Y: 0}, 2: {X: 0, Y: 1}}, t0, temporal.Cartesian)
	require.NoError(t, err)
	for _, id := range a.VertexIDs {
		v, _ := a.Vertex(id)
		v.AddState(temporal.VertexState{Kind: temporal.StateAbsolute, Interval: temporal.NewOpenInterval(t1), Absolute: temporal.Point{X: 99, Y: 99}})
	}

	b, err := svc.CreatePolygon(uuid.New(), []int{0, 1, 2}, map[int]temporal.Point{0: {X: 0, Y: 0}, 1: {X: 1, Y: 0}, 2: {X: 0, Y: 1}}, t2, temporal.Cartesian)
	require.NoError(t, err)

	inEarly := svc.PolygonsInTimeRange(t0, t1)
	assert.ElementsMatch(t, []uuid.UUID{a.ID}, inEarly)

	inFull := svc.PolygonsInTimeRange(t0, t3)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, inFull)
}

func TestRemovePolygonEvictsCachesAndMarks(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)
	ids, points := unitSquare()
	p, err := svc.CreatePolygon(uuid.New(), ids, points, t0, temporal.Cartesian)
	require.NoError(t, err)

	_, err = svc.GetPolygonAt(p.ID, t0)
	require.NoError(t, err)
	require.NoError(t, svc.MarkTimeForPrecomputation(p.ID, t0))

	require.NoError(t, svc.RemovePolygon(p.ID))

	_, err = svc.GetPolygon(p.ID)
	assert.Error(t, err)
	assert.Equal(t, 0, svc.cache.Stats().Entries)
	assert.Empty(t, svc.GetPrecomputationTimes(p.ID))
}

func TestDetectIdenticalChangesViaService(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)
	id := uuid.New()
	_, err := svc.CreatePolygon(id, []int{0, 1, 2}, map[int]temporal.Point{0: {X: 0, Y: 0}, 1: {X: 10, Y: 0}, 2: {X: 5, Y: 10}}, t0, temporal.Cartesian)
	require.NoError(t, err)

	t1 := t0.Add(time.Hour)
	require.NoError(t, svc.UpdateVerticesWithSameDelta(context.Background(), id, []int{0, 1}, temporal.Point{X: 1, Y: 1}, t1))

	groups, err := svc.DetectIdenticalChanges(id, t1)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []int{0, 1}, groups[0].VertexIDs)
}

func TestToGeoJSON(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)
	id := uuid.New()
	_, err := svc.CreatePolygon(id, []int{0, 1, 2}, map[int]temporal.Point{0: {X: 0, Y: 0}, 1: {X: 10, Y: 0}, 2: {X: 5, Y: 10}}, t0, temporal.Cartesian)
	require.NoError(t, err)

	geo, err := svc.ToGeoJSON(id, t0)
	require.NoError(t, err)
	assert.Contains(t, string(geo), "Polygon")
}

func TestChangeNotifications(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)

	var mu sync.Mutex
	var polygonEvents []ChangeKind
	var vertexEvents []VertexChanged

	svc.OnPolygonChanged(func(e PolygonChanged) {
		mu.Lock()
		defer mu.Unlock()
		polygonEvents = append(polygonEvents, e.Kind)
	})
	svc.OnVertexChanged(func(e VertexChanged) {
		mu.Lock()
		defer mu.Unlock()
		vertexEvents = append(vertexEvents, e)
	})

	ids, points := unitSquare()
	p, err := svc.CreatePolygon(uuid.New(), ids, points, t0, temporal.Cartesian)
	require.NoError(t, err)

	t1 := t0.Add(time.Hour)
	require.NoError(t, svc.UpdateVertex(p.ID, 0, temporal.Point{X: 1, Y: 1}, t1, true, 100))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []ChangeKind{Created, VertexUpdated}, polygonEvents)
	require.Len(t, vertexEvents, 1)
	assert.Equal(t, 0, vertexEvents[0].VertexID)
	assert.Equal(t, temporal.Point{X: 1, Y: 1}, vertexEvents[0].NewPos)
}

func TestConcurrentGetPolygonAtSingleflight(t *testing.T) {
	svc := New()
	t0 := time.Unix(1_700_000_000, 0)
	ids, points := unitSquare()
	p, err := svc.CreatePolygon(uuid.New(), ids, points, t0, temporal.Cartesian)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]temporal.Point, 20)
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.GetPolygonAt(p.ID, t0)
			assert.NoError(t, err)
			results[i] = got
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, temporal.Point{X: 0, Y: 0}, r[0])
	}
}
