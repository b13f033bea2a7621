package main

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unscriptable/bard/reactive"
	"github.com/unscriptable/bard/reactive/bind"
	"github.com/unscriptable/bard/reactive/debugui"
	debugui_ebiten "github.com/unscriptable/bard/reactive/debugui/ebiten"
	"github.com/unscriptable/bard/reactive/node"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Step the workload in a window with the debug panels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			perFrame, _ := cmd.Flags().GetInt("per-frame")
			return inspect(cfg.Stress, logger, perFrame)
		},
	}
	addWorkloadFlags(cmd)
	cmd.Flags().Int("per-frame", 10, "operations per frame")
	return cmd
}

func inspect(cfg StressConfig, logger *zap.Logger, perFrame int) error {
	w, err := NewWorkload(cfg, logger)
	if err != nil {
		return err
	}
	if err := w.Seed(); err != nil {
		return err
	}

	array := w.Array()
	paused := false
	panels := debugui.NewSet(
		debugui.NewIndexInspector("Bindings", array.Index(), describeBinding, 100),
		debugui.NewStatsPanel("Reconciler", array.Stats, 120),
		debugui.PanelFunc(func() { workloadPanel(w, &paused) }),
	)

	game := &debugui_ebiten.Game{
		Backend: debugui_ebiten.NewImguiBackend("bard-stress inspect", 1280, 720),
		Panels:  panels,
		Step: func() error {
			if paused {
				return nil
			}
			for range perFrame {
				if err := w.Step(); err != nil {
					return err
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return w.Check()
		},
	}

	logger.Info("opening inspector", zap.Int("per_frame", perFrame))
	return debugui_ebiten.Run(game)
}

func describeBinding(b *reactive.Binding[bind.Item, *node.Node]) debugui.Row {
	return debugui.Row{
		ID:     fmt.Sprint(b.Entity["id"]),
		Key:    fmt.Sprint(b.Entity["rank"]),
		Target: b.Target.ID(),
	}
}

func workloadPanel(w *Workload, paused *bool) {
	if !imgui.BeginV("Workload", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	c := w.Counts
	imgui.Text(fmt.Sprintf("Live Items: %d", w.Live()))
	imgui.Text(fmt.Sprintf("Appends: %d  Deletes: %d", c.Appends, c.Deletes))
	imgui.Text(fmt.Sprintf("Replacements: %d  In-place: %d", c.Replacements, c.InPlace))
	imgui.Text(fmt.Sprintf("Batches: %d (%d records)", c.Batches, c.Records))
	imgui.Text(fmt.Sprintf("Checks Passed: %d", c.Checks))

	label := "Pause"
	if *paused {
		label = "Resume"
	}
	if imgui.Button(label) {
		*paused = !*paused
	}

	imgui.End()
}
