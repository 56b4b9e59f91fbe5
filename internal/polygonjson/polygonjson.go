// Package polygonjson is the JSON persistence codec for the temporal
// polygon data model: it marshals and unmarshals the wire document
// format exactly, including the vertexIds/vertexIdsEncoded mutual
// exclusivity and the natural-order range-encoding shortcut.
//
// Uses encoding/json directly. No third-party codec in the example
// pack (go-geom's own encoding sub-packages only cover geometry, not
// this domain's interval/state document shape), so the stdlib encoder
// is the right tool here rather than a fit we're forcing.
package polygonjson

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/temporal-polygon/internal/polygonerr"
	"github.com/sells-group/temporal-polygon/internal/temporal"
)

type functionDTO struct {
	FunctionType    string    `json:"functionType"`
	ReferencePointX float64   `json:"referencePointX"`
	ReferencePointY float64   `json:"referencePointY"`
	ReferenceTime   time.Time `json:"referenceTime"`
	Parameters      []float64 `json:"parameters"`
}

type stateDTO struct {
	DeltaX           float64      `json:"deltaX"`
	DeltaY           float64      `json:"deltaY"`
	IsAbsolute       bool         `json:"isAbsolute"`
	AbsoluteX        *float64     `json:"absoluteX,omitempty"`
	AbsoluteY        *float64     `json:"absoluteY,omitempty"`
	IntervalStart    time.Time    `json:"intervalStart"`
	IntervalEnd      *time.Time   `json:"intervalEnd,omitempty"`
	GroupedVertexIDs []int        `json:"groupedVertexIds,omitempty"`
	TemporalFunction *functionDTO `json:"temporalFunction,omitempty"`
}

type vertexDTO struct {
	ID     int        `json:"id"`
	States []stateDTO `json:"states"`
}

type documentDTO struct {
	ID               uuid.UUID   `json:"id"`
	VertexIDs        []int       `json:"vertexIds"`
	VertexIDsEncoded *string     `json:"vertexIdsEncoded"`
	CoordinateSystem *string     `json:"coordinateSystem"`
	Vertices         []vertexDTO `json:"vertices"`
}

// Marshal serializes a polygon to the wire document format.
func Marshal(p *temporal.TemporalPolygon) ([]byte, error) {
	doc := documentDTO{ID: p.ID}

	if isNaturalOrder(p.VertexIDs) {
		encoded := encodeRanges(p.VertexIDs)
		doc.VertexIDsEncoded = &encoded
	} else {
		doc.VertexIDs = append([]int(nil), p.VertexIDs...)
	}

	cs := p.CoordSystem.String()
	doc.CoordinateSystem = &cs

	for _, id := range p.VertexIDs {
		v, ok := p.Vertices[id]
		if !ok {
			return nil, polygonerr.NotFoundf("vertex %d missing from polygon %s", id, p.ID)
		}
		vd := vertexDTO{ID: id}
		for _, s := range v.States() {
			sd, err := marshalState(s)
			if err != nil {
				return nil, err
			}
			vd.States = append(vd.States, sd)
		}
		doc.Vertices = append(doc.Vertices, vd)
	}

	return json.Marshal(doc)
}

func marshalState(s temporal.VertexState) (stateDTO, error) {
	sd := stateDTO{
		IntervalStart:    s.Interval.Start,
		IntervalEnd:      s.Interval.End,
		GroupedVertexIDs: s.GroupedVertexIDs,
	}

	switch s.Kind {
	case temporal.StateAbsolute:
		sd.IsAbsolute = true
		sd.AbsoluteX = &s.Absolute.X
		sd.AbsoluteY = &s.Absolute.Y

	case temporal.StateDelta:
		sd.DeltaX = s.Delta.X
		sd.DeltaY = s.Delta.Y

	case temporal.StateFunction:
		fd, err := marshalFunction(s.Function, s.Interval.Start)
		if err != nil {
			return stateDTO{}, err
		}
		sd.TemporalFunction = &fd
		if fd.FunctionType == "Opaque" {
			// Opaque closures can't be reconstructed on deserialize, so we
			// carry the resolved position alongside as the fallback.
			fallback, err := s.Function.PositionAt(s.Interval.Start)
			if err != nil {
				return stateDTO{}, polygonerr.InvalidArgumentf("resolve opaque fallback: %v", err)
			}
			sd.AbsoluteX = &fallback.X
			sd.AbsoluteY = &fallback.Y
		}

	default:
		return stateDTO{}, polygonerr.InvalidArgumentf("unknown state kind %v", s.Kind)
	}

	return sd, nil
}

func marshalFunction(fn temporal.TemporalFunction, intervalStart time.Time) (functionDTO, error) {
	switch f := fn.(type) {
	case temporal.LinearFunction:
		return functionDTO{
			FunctionType:    "Linear",
			ReferencePointX: f.RefPoint.X,
			ReferencePointY: f.RefPoint.Y,
			ReferenceTime:   f.T0,
			Parameters:      []float64{f.VX, f.VY},
		}, nil

	case temporal.CircularFunction:
		return functionDTO{
			FunctionType:    "Circular",
			ReferencePointX: f.Center.X,
			ReferencePointY: f.Center.Y,
			ReferenceTime:   f.T0,
			Parameters:      []float64{f.Radius, f.Omega, f.Phi},
		}, nil

	case temporal.OpaqueFunction:
		return functionDTO{
			FunctionType:    "Opaque",
			ReferencePointX: f.RefPoint.X,
			ReferencePointY: f.RefPoint.Y,
			ReferenceTime:   f.T0,
			Parameters:      nil,
		}, nil

	default:
		return functionDTO{}, polygonerr.InvalidArgumentf("unknown temporal function type %T", fn)
	}
}

// Unmarshal deserializes a polygon from the wire document format.
func Unmarshal(data []byte) (*temporal.TemporalPolygon, error) {
	var doc documentDTO
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, polygonerr.InvalidArgumentf("decode polygon document: %v", err)
	}

	ids, err := resolveVertexIDs(doc)
	if err != nil {
		return nil, err
	}

	coordSystem := temporal.Cartesian
	if doc.CoordinateSystem != nil && *doc.CoordinateSystem == "Geographic" {
		coordSystem = temporal.Geographic
	}

	vertices := make(map[int]*temporal.Vertex, len(doc.Vertices))
	for _, vd := range doc.Vertices {
		v := temporal.NewVertex(vd.ID)
		for _, sd := range vd.States {
			s, err := unmarshalState(sd)
			if err != nil {
				return nil, err
			}
			v.AddState(s)
		}
		vertices[vd.ID] = v
	}

	return &temporal.TemporalPolygon{
		ID:          doc.ID,
		VertexIDs:   ids,
		Vertices:    vertices,
		CoordSystem: coordSystem,
	}, nil
}

func resolveVertexIDs(doc documentDTO) ([]int, error) {
	hasEncoded := doc.VertexIDsEncoded != nil
	hasPlain := doc.VertexIDs != nil
	switch {
	case hasEncoded && hasPlain:
		return nil, polygonerr.InvalidArgumentf("document carries both vertexIds and vertexIdsEncoded")
	case hasEncoded:
		return decodeRanges(*doc.VertexIDsEncoded)
	case hasPlain:
		return doc.VertexIDs, nil
	default:
		return nil, polygonerr.InvalidArgumentf("document carries neither vertexIds nor vertexIdsEncoded")
	}
}

func unmarshalState(sd stateDTO) (temporal.VertexState, error) {
	var interval temporal.TimeInterval
	if sd.IntervalEnd == nil {
		interval = temporal.NewOpenInterval(sd.IntervalStart)
	} else {
		var err error
		interval, err = temporal.NewInterval(sd.IntervalStart, *sd.IntervalEnd)
		if err != nil {
			return temporal.VertexState{}, err
		}
	}

	s := temporal.VertexState{
		Interval:         interval,
		GroupedVertexIDs: sd.GroupedVertexIDs,
	}

	switch {
	case sd.TemporalFunction != nil && sd.TemporalFunction.FunctionType == "Opaque":
		// Opaque functions fall back to the absolute position carried
		// alongside; the closures themselves never serialize.
		s.Kind = temporal.StateAbsolute
		s.Absolute = absoluteFallback(sd)

	case sd.TemporalFunction != nil:
		fn, err := unmarshalFunction(*sd.TemporalFunction)
		if err != nil {
			return temporal.VertexState{}, err
		}
		s.Kind = temporal.StateFunction
		s.Function = fn

	case sd.IsAbsolute:
		s.Kind = temporal.StateAbsolute
		s.Absolute = absoluteFallback(sd)

	default:
		s.Kind = temporal.StateDelta
		s.Delta = temporal.Point{X: sd.DeltaX, Y: sd.DeltaY}
	}

	return s, nil
}

func absoluteFallback(sd stateDTO) temporal.Point {
	var p temporal.Point
	if sd.AbsoluteX != nil {
		p.X = *sd.AbsoluteX
	}
	if sd.AbsoluteY != nil {
		p.Y = *sd.AbsoluteY
	}
	return p
}

func unmarshalFunction(fd functionDTO) (temporal.TemporalFunction, error) {
	switch fd.FunctionType {
	case "Linear":
		if len(fd.Parameters) != 2 {
			return nil, polygonerr.InvalidArgumentf("linear function expects 2 parameters, got %d", len(fd.Parameters))
		}
		return temporal.LinearFunction{
			RefPoint: temporal.Point{X: fd.ReferencePointX, Y: fd.ReferencePointY},
			T0:       fd.ReferenceTime,
			VX:       fd.Parameters[0],
			VY:       fd.Parameters[1],
		}, nil

	case "Circular":
		if len(fd.Parameters) != 3 {
			return nil, polygonerr.InvalidArgumentf("circular function expects 3 parameters, got %d", len(fd.Parameters))
		}
		return temporal.CircularFunction{
			Center: temporal.Point{X: fd.ReferencePointX, Y: fd.ReferencePointY},
			T0:     fd.ReferenceTime,
			Radius: fd.Parameters[0],
			Omega:  fd.Parameters[1],
			Phi:    fd.Parameters[2],
		}, nil

	default:
		return nil, polygonerr.InvalidArgumentf("unknown temporal function type %q", fd.FunctionType)
	}
}

// isNaturalOrder reports whether ids is exactly 0, 1, ..., n-1 in order.
func isNaturalOrder(ids []int) bool {
	for i, id := range ids {
		if id != i {
			return false
		}
	}
	return len(ids) > 0
}

// encodeRanges compresses a sorted id sequence into comma-separated
// tokens, each either "n" or "a-b". Only called for natural-order
// sequences, so it always produces a single "0-(n-1)" range, but the
// implementation is general.
func encodeRanges(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	var tokens []string
	start := ids[0]
	prev := ids[0]
	flush := func(end int) {
		if start == end {
			tokens = append(tokens, strconv.Itoa(start))
		} else {
			tokens = append(tokens, fmt.Sprintf("%d-%d", start, end))
		}
	}
	for _, id := range ids[1:] {
		if id == prev+1 {
			prev = id
			continue
		}
		flush(prev)
		start, prev = id, id
	}
	flush(prev)
	return strings.Join(tokens, ", ")
}

// decodeRanges expands a comma-separated range-encoded id sequence back
// into individual ids, in the order the tokens appear.
func decodeRanges(encoded string) ([]int, error) {
	var ids []int
	for _, tok := range strings.Split(encoded, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if a, b, ok := strings.Cut(tok, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(a))
			if err != nil {
				return nil, polygonerr.InvalidArgumentf("decode vertex id range %q: %v", tok, err)
			}
			end, err := strconv.Atoi(strings.TrimSpace(b))
			if err != nil {
				return nil, polygonerr.InvalidArgumentf("decode vertex id range %q: %v", tok, err)
			}
			if end < start {
				return nil, polygonerr.InvalidArgumentf("decode vertex id range %q: end before start", tok)
			}
			for i := start; i <= end; i++ {
				ids = append(ids, i)
			}
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, polygonerr.InvalidArgumentf("decode vertex id token %q: %v", tok, err)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
