package geojsonfmt

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/temporal-polygon/internal/temporal"
)

func triangle() []temporal.Point {
	return []temporal.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 10}}
}

// TestInvariant5RingClosure covers spec invariant 5: the coordinate
// array has n+1 entries for an n-distinct-point reconstruction, with
// the first and last equal.
func TestInvariant5RingClosure(t *testing.T) {
	data, err := Geometry(triangle())
	require.NoError(t, err)

	var decoded struct {
		Type        string        `json:"type"`
		Coordinates [][][]float64 `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Coordinates, 1)

	ring := decoded.Coordinates[0]
	assert.Len(t, ring, len(triangle())+1)
	assert.Equal(t, ring[0], ring[len(ring)-1])
}

func TestGeometryRejectsFewerThanThreeDistinctPoints(t *testing.T) {
	_, err := Geometry([]temporal.Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}})
	assert.Error(t, err)
}

func TestFeatureCarriesPolygonID(t *testing.T) {
	id := uuid.New()
	data, err := Feature(id, triangle())
	require.NoError(t, err)

	var decoded struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id.String(), decoded.Properties["polygon_id"])
}

func TestFeatureCollectionOverMultipleEntries(t *testing.T) {
	entries := []PolygonAtTime{
		{PolygonID: uuid.New(), Points: triangle()},
		{PolygonID: uuid.New(), Points: triangle()},
	}
	data, err := FeatureCollection(entries)
	require.NoError(t, err)

	var decoded struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Features, 2)
}
