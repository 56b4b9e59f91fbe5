package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/temporal-polygon/internal/geomutil"
	"github.com/sells-group/temporal-polygon/internal/polygonjson"
	"github.com/sells-group/temporal-polygon/internal/temporal"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.json>",
	Short: "Print area, perimeter, centroid, and bounding box for a polygon's initial state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read polygon document")
		}
		p, err := polygonjson.Unmarshal(data)
		if err != nil {
			return eris.Wrap(err, "decode polygon document")
		}

		points := make([]temporal.Point, 0, len(p.VertexIDs))
		for _, id := range p.VertexIDs {
			v, ok := p.Vertex(id)
			if !ok {
				return eris.Errorf("vertex %d missing from polygon %s", id, p.ID)
			}
			states := v.States()
			if len(states) == 0 {
				return eris.Errorf("vertex %d has no states", id)
			}
			first := states[0]
			pos, ok := v.PositionAt(first.Interval.Start)
			if !ok {
				return eris.Errorf("vertex %d does not resolve at its own initial state", id)
			}
			points = append(points, pos)
		}

		bbox := geomutil.BoundingBox(points)
		centroid := geomutil.Centroid(points)

		fmt.Printf("polygon:    %s\n", p.ID)
		fmt.Printf("vertices:   %d\n", len(points))
		fmt.Printf("area:       %.4f\n", geomutil.Area(points))
		fmt.Printf("perimeter:  %.4f\n", geomutil.Perimeter(points))
		fmt.Printf("centroid:   (%.4f, %.4f)\n", centroid.X, centroid.Y)
		fmt.Printf("bbox:       [%.4f, %.4f] - [%.4f, %.4f]\n", bbox.MinX, bbox.MinY, bbox.MaxX, bbox.MaxY)
		fmt.Printf("convex:     %t\n", geomutil.IsConvex(points))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
