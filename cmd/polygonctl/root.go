// Command polygonctl is a thin demo CLI over the temporal polygon
// store: it loads polygon documents, registers them with a
// polygonsvc.Service, and prints reconstructions or geometric
// summaries. The core remains a library (spec §6); this entry point
// exists because every other package in the example corpus carries one.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/temporal-polygon/internal/config"
	"github.com/sells-group/temporal-polygon/internal/polygonsvc"
)

var cfg *config.Config

// svc is shared across subcommand invocations within a single process
// run; each invocation of polygonctl is a fresh process, so this holds
// no state across CLI calls.
var svc *polygonsvc.Service

var rootCmd = &cobra.Command{
	Use:   "polygonctl",
	Short: "Inspect and query temporal polygons",
	Long:  "Loads temporal polygon documents and reconstructs, queries, or summarizes them.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		svc = polygonsvc.New(
			polygonsvc.WithCacheCapacity(cfg.Cache.Capacity),
			polygonsvc.WithPrecomputeRate(cfg.Precompute.MaterializationsPerSecond),
		)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
