package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/unscriptable/bard/reactive"
)

// StatsPanel shows reconciler counters and a history of frame times.
type StatsPanel struct {
	title  string
	source func() reactive.Stats
	timer  *FrameTimer

	historyFrames int
	frameHistory  []float32
	frameIndex    int
	last          reactive.Stats
	opsHistory    []float32
}

func NewStatsPanel(title string, source func() reactive.Stats, historyFrames int) *StatsPanel {
	historyFrames = max(historyFrames, 1)
	return &StatsPanel{
		title:         title,
		source:        source,
		timer:         NewFrameTimer(),
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
		opsHistory:    make([]float32, historyFrames),
	}
}

func (sp *StatsPanel) Render() {
	if !imgui.BeginV(sp.title, nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := sp.source()
	ops := stats.Inserts + stats.Updates + stats.Deletes
	lastOps := sp.last.Inserts + sp.last.Updates + sp.last.Deletes

	sp.frameHistory[sp.frameIndex] = sp.timer.DeltaTime() * 1000.0
	sp.opsHistory[sp.frameIndex] = float32(ops - lastOps)
	sp.frameIndex = (sp.frameIndex + 1) % sp.historyFrames
	sp.last = stats

	imgui.Text(fmt.Sprintf("Bindings: %d", stats.Bindings))
	imgui.Text(fmt.Sprintf("Inserts: %d  Updates: %d  Deletes: %d", stats.Inserts, stats.Updates, stats.Deletes))
	imgui.Text(fmt.Sprintf("Moves: %d  Clears: %d  Misses: %d", stats.Moves, stats.Clears, stats.Misses))
	imgui.Text(fmt.Sprintf("Probes: %d (%.2f per lookup)", stats.Probes, stats.ProbesPerLookup()))

	var avgFrameTime float32
	for _, ft := range sp.frameHistory {
		avgFrameTime += ft
	}
	avgFrameTime /= float32(sp.historyFrames)
	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &sp.frameHistory[0], int32(len(sp.frameHistory)))
	imgui.Text("Operations per Frame")
	imgui.PlotLinesFloatPtr("##ops", &sp.opsHistory[0], int32(len(sp.opsHistory)))

	imgui.End()
}

// FrameTimer measures the time between successive frames.
type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

// DeltaTime returns the seconds since the previous call.
func (ft *FrameTimer) DeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
