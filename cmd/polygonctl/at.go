package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/temporal-polygon/internal/polygonjson"
)

var atCmd = &cobra.Command{
	Use:   "at <file.json> <polygon-id> <rfc3339-time>",
	Short: "Reconstruct a polygon at a point in time and print its GeoJSON",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read polygon document")
		}
		p, err := polygonjson.Unmarshal(data)
		if err != nil {
			return eris.Wrap(err, "decode polygon document")
		}

		id, err := uuid.Parse(args[1])
		if err != nil {
			return eris.Wrap(err, "parse polygon id")
		}
		if id != p.ID {
			return eris.Errorf("polygon id %s does not match document id %s", id, p.ID)
		}

		t, err := time.Parse(time.RFC3339, args[2])
		if err != nil {
			return eris.Wrap(err, "parse time")
		}

		svc.Register(p)

		geo, err := svc.ToGeoJSON(id, t)
		if err != nil {
			return eris.Wrap(err, "reconstruct polygon")
		}

		fmt.Println(string(geo))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(atCmd)
}
