package linesort

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what a Sorter did. The counters accumulate over every Sort
// call made with the same Sorter.
type Metrics struct {
	LinesRead         prometheus.Counter
	LinesDropped      prometheus.Counter
	DuplicatesDropped prometheus.Counter
	RunsCreated       prometheus.Counter
	MergePasses       prometheus.Counter
	RecordsWritten    prometheus.Counter
}

func newMetrics() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "linesort",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		LinesRead:         counter("lines_read_total", "Lines read from the input."),
		LinesDropped:      counter("lines_dropped_total", "Input lines that were not valid records."),
		DuplicatesDropped: counter("duplicates_dropped_total", "Duplicate records removed in unique mode."),
		RunsCreated:       counter("runs_created_total", "Sorted run files written by partitioning and merging."),
		MergePasses:       counter("merge_passes_total", "Merge passes over the workspace."),
		RecordsWritten:    counter("records_written_total", "Records written to sorted outputs."),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.LinesRead,
		m.LinesDropped,
		m.DuplicatesDropped,
		m.RunsCreated,
		m.MergePasses,
		m.RecordsWritten,
	}
}

// Register registers every counter with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
