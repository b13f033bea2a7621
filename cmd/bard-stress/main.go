// Command bard-stress drives a bound array with a randomized workload and
// checks that the rendered rows stay sorted and in step with the model.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// flag name -> config key, shared by run and inspect
var stressKeys = map[string]string{
	"log-level":   "log.level",
	"log-format":  "log.format",
	"duration":    "stress.duration",
	"items":       "stress.items",
	"seed":        "stress.seed",
	"inplace":     "stress.inplace",
	"drift":       "stress.drift",
	"batch":       "stress.batch",
	"check-every": "stress.check_every",
	"output":      "stress.output",
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bard-stress",
		Short: "Stress test the ordered binding reconciler",
		Long: `bard-stress binds a list section to a randomly mutating collection and
verifies after every few batches that the index is sorted and the rendered
rows follow it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "log format (console, json, auto)")

	root.AddCommand(newRunCmd(), newInspectCmd())
	return root
}

// addWorkloadFlags declares the flags that shape the workload. Defaults live
// in the Config struct tags, so the flag defaults only document them.
func addWorkloadFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("duration", 0, "how long to run (default 5s)")
	cmd.Flags().Int("items", 0, "population to hover around (default 1000)")
	cmd.Flags().Int64("seed", 0, "random seed (default 1)")
	cmd.Flags().Float64("inplace", 0, "share of updates applied in place (default 0.5)")
	cmd.Flags().Int("drift", 0, "largest rank change per update (default 25)")
	cmd.Flags().Int("batch", 0, "operations per delivered batch (default 8)")
	cmd.Flags().Int("check-every", 0, "operations between invariant checks (default 100)")
}

// setup loads the configuration and builds the logger for cmd.
func setup(cmd *cobra.Command) (*Config, *zap.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(configFile, cmd.Flags(), stressKeys)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		l, logErr := NewLogger(LogConfig{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
