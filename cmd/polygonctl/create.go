package main

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/temporal-polygon/internal/polygonjson"
	"github.com/sells-group/temporal-polygon/internal/shapefileimport"
	"github.com/sells-group/temporal-polygon/internal/temporal"
)

var createShapefile string

var createCmd = &cobra.Command{
	Use:   "create [file.json]",
	Short: "Load a polygon document (or --shapefile) and register it with the store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if createShapefile != "" {
			return runCreateFromShapefile(createShapefile)
		}
		if len(args) != 1 {
			return eris.New("create requires a file.json argument, or --shapefile <path>")
		}
		return runCreateFromJSON(args[0])
	},
}

func runCreateFromJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "read polygon document")
	}

	p, err := polygonjson.Unmarshal(data)
	if err != nil {
		return eris.Wrap(err, "decode polygon document")
	}

	svc.Register(p)

	zap.L().Info("polygon registered",
		zap.String("polygon_id", p.ID.String()),
		zap.Int("vertices", len(p.VertexIDs)),
	)
	return nil
}

// runCreateFromShapefile seeds a brand-new polygon from a Shapefile's first
// polygon shape, going through CreatePolygon (not Register) since a
// shapefile carries only a single geometry snapshot, not a full vertex
// history: it is exactly the "genuinely new polygon" case CreatePolygon's
// geometric validation (collinearity, self-intersection) exists for.
func runCreateFromShapefile(path string) error {
	vertexIDs, initialPoints, err := shapefileimport.LoadInitialRing(path)
	if err != nil {
		return eris.Wrap(err, "load shapefile")
	}

	id := uuid.New()
	p, err := svc.CreatePolygon(id, vertexIDs, initialPoints, time.Now().UTC(), temporal.Cartesian)
	if err != nil {
		return eris.Wrap(err, "create polygon from shapefile")
	}

	zap.L().Info("polygon created from shapefile",
		zap.String("polygon_id", p.ID.String()),
		zap.Int("vertices", len(p.VertexIDs)),
		zap.String("shapefile", path),
	)
	return nil
}

func init() {
	createCmd.Flags().StringVar(&createShapefile, "shapefile", "", "load initial geometry from a Shapefile's first polygon shape instead of a JSON document")
	rootCmd.AddCommand(createCmd)
}
