package main

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the workload for a while and print a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return runStress(cmd.Context(), cfg.Stress, logger)
		},
	}
	addWorkloadFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "report format: text or yaml (default text)")
	return cmd
}

func runStress(ctx context.Context, cfg StressConfig, logger *zap.Logger) error {
	w, err := NewWorkload(cfg, logger)
	if err != nil {
		return err
	}

	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)

	logger.Info("running workload",
		zap.Duration("duration", cfg.Duration),
		zap.Int("items", cfg.Items),
		zap.Int64("seed", cfg.Seed))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	start := time.Now()
	failure := w.Run(ctx)
	elapsed := time.Since(start)
	runtime.ReadMemStats(&memEnd)

	report := NewReport(cfg, w, elapsed, readMemory(&memStart, &memEnd), failure)
	if err := report.Write(os.Stdout, cfg.Output); err != nil {
		return err
	}

	if failure != nil {
		return failure
	}
	logger.Info("workload finished",
		zap.Int64("ops", w.Counts.Ops()),
		zap.Int64("checks", w.Counts.Checks))
	return nil
}
