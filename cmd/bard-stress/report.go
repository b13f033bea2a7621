package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unscriptable/bard/reactive"
)

// Report summarises one stress run.
type Report struct {
	Config StressConfig `yaml:"config"`

	Counts   Counts         `yaml:"operations"`
	Stats    reactive.Stats `yaml:"reconciler"`
	Bindings int            `yaml:"bindings"`
	Elapsed  time.Duration  `yaml:"elapsed"`
	Deliver  Durations      `yaml:"deliver"`
	Memory   Memory         `yaml:"memory"`
	Failure  string         `yaml:"failure,omitempty"`
}

// Durations collects timing samples.
type Durations struct {
	Min     time.Duration   `yaml:"min"`
	Max     time.Duration   `yaml:"max"`
	Avg     time.Duration   `yaml:"avg"`
	Samples []time.Duration `yaml:"-"`
}

func (d *Durations) Finalize() {
	if len(d.Samples) == 0 {
		return
	}

	var total time.Duration
	d.Min = d.Samples[0]
	d.Max = d.Samples[0]

	for _, sample := range d.Samples {
		d.Min = min(d.Min, sample)
		d.Max = max(d.Max, sample)
		total += sample
	}
	d.Avg = total / time.Duration(len(d.Samples))
}

// Memory is the slice of runtime.MemStats the report shows.
type Memory struct {
	HeapAllocStart uint64 `yaml:"heap_alloc_start"`
	HeapAllocEnd   uint64 `yaml:"heap_alloc_end"`
	TotalAlloc     uint64 `yaml:"total_alloc"`
	NumGC          uint32 `yaml:"num_gc"`
}

func readMemory(start, end *runtime.MemStats) Memory {
	return Memory{
		HeapAllocStart: start.HeapAlloc,
		HeapAllocEnd:   end.HeapAlloc,
		TotalAlloc:     end.TotalAlloc - start.TotalAlloc,
		NumGC:          end.NumGC - start.NumGC,
	}
}

// NewReport gathers the results of w.
func NewReport(cfg StressConfig, w *Workload, elapsed time.Duration, mem Memory, failure error) *Report {
	r := &Report{
		Config:   cfg,
		Counts:   w.Counts,
		Stats:    w.Array().Stats(),
		Bindings: w.Array().Len(),
		Elapsed:  elapsed,
		Deliver:  w.Deliver,
		Memory:   mem,
	}
	r.Deliver.Finalize()
	if failure != nil {
		r.Failure = failure.Error()
	}
	return r
}

// Write renders the report as text or yaml.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return r.Generate(w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Reconciler Stress Report

## Configuration
- **Run Duration:** {{.Config.Duration}}
- **Target Items:** {{.Config.Items}}
- **Seed:** {{.Config.Seed}}
- **In-place Share:** {{.Config.InPlace}}
- **Batch Size:** {{.Config.Batch}}

## Operations
- **Total:** {{.Counts.Ops}} in {{.Elapsed}} ({{rate .Counts.Ops .Elapsed}} ops/s)
- **Appends:** {{.Counts.Appends}}
- **Replacements:** {{.Counts.Replacements}}
- **In-place Updates:** {{.Counts.InPlace}}
- **Deletes:** {{.Counts.Deletes}}
- **Skipped (slot busy):** {{.Counts.Skipped}}
- **Batches Delivered:** {{.Counts.Batches}} ({{.Counts.Records}} records)
- **Invariant Checks:** {{.Counts.Checks}}

## Reconciler
- **Bindings:** {{.Bindings}}
- **Inserts / Updates / Deletes:** {{.Stats.Inserts}} / {{.Stats.Updates}} / {{.Stats.Deletes}}
- **Moves:** {{.Stats.Moves}}
- **Misses:** {{.Stats.Misses}}
- **Probes per Lookup:** {{printf "%.2f" .Stats.ProbesPerLookup}}
- **Delivery Time (Batch):**
  - **Avg:** {{.Deliver.Avg}}
  - **Min:** {{.Deliver.Min}}
  - **Max:** {{.Deliver.Max}}

## Memory
- Heap Alloc:  {{mb .Memory.HeapAllocStart}} MB (start) -> {{mb .Memory.HeapAllocEnd}} MB (end)
- Total Alloc: {{mb .Memory.TotalAlloc}} MB
- Num GC:      {{.Memory.NumGC}}
{{if .Failure}}
## FAILED
{{.Failure}}
{{end}}`

	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"rate": func(n int64, d time.Duration) string {
			if d <= 0 {
				return "N/A"
			}
			return fmt.Sprintf("%.0f", float64(n)/d.Seconds())
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
