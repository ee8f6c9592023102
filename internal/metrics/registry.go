// Package metrics counts what a partition run produced and exports the
// counters as a Prometheus textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "figsplit"

// Definition describes one counter family.
type Definition struct {
	Name   string
	Help   string
	Labels []string
}

// Counter families, in registration order.
var (
	SettingsEmitted = Definition{
		Name:   "settings_emitted_total",
		Help:   "Settings split and written.",
		Labels: []string{"task", "strategy"},
	}
	SettingsSkipped = Definition{
		Name:   "settings_skipped_total",
		Help:   "Settings skipped because the filtered pool was too small.",
		Labels: []string{"task"},
	}
	RowsWritten = Definition{
		Name:   "rows_written_total",
		Help:   "Rows written to train and validation tables.",
		Labels: []string{"task", "side"},
	}
	TestSlices = Definition{
		Name:   "test_slices_total",
		Help:   "Evaluation slices written.",
		Labels: []string{"task"},
	}
)

var definitions = []Definition{SettingsEmitted, SettingsSkipped, RowsWritten, TestSlices}

// Registry holds the counters of one run. A nil *Registry ignores all
// observations.
type Registry struct {
	reg      *prometheus.Registry
	counters map[string]*prometheus.CounterVec
}

// NewRegistry creates a registry with every counter family registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg:      prometheus.NewRegistry(),
		counters: make(map[string]*prometheus.CounterVec, len(definitions)),
	}
	for _, def := range definitions {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      def.Name,
			Help:      def.Help,
		}, def.Labels)
		r.reg.MustRegister(vec)
		r.counters[def.Name] = vec
	}
	return r
}

// Add increments the counter of def with the given label values.
func (r *Registry) Add(def Definition, value float64, labels ...string) {
	if r == nil {
		return
	}
	r.counters[def.Name].WithLabelValues(labels...).Add(value)
}

// Counter returns the counter of def for the given label values.
func (r *Registry) Counter(def Definition, labels ...string) prometheus.Counter {
	return r.counters[def.Name].WithLabelValues(labels...)
}

// WriteTextfile writes all counters in the Prometheus text format.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
