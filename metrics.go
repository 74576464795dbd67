package keytheme

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// runMetrics mirrors a Summary as gauges in a private registry.
type runMetrics struct {
	registry *prometheus.Registry
	nodes    *prometheus.GaugeVec
	records  prometheus.Gauge
	cells    *prometheus.GaugeVec
	table    *prometheus.GaugeVec
	lastRun  prometheus.Gauge
}

func newRunMetrics() *runMetrics {
	const labelState = "state"
	const labelDimension = "dimension"

	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "keytheme_nodes",
			Help: "nodes seen in the last run by state (visited, skipped, unstyled)",
		}, []string{labelState}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keytheme_records",
			Help: "key records extracted in the last run",
		}),
		cells: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "keytheme_cells",
			Help: "table cells in the last run by state (filled, empty, overwritten)",
		}, []string{labelState}),
		table: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "keytheme_table_size",
			Help: "size of the separated table (rows, themes)",
		}, []string{labelDimension}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "keytheme_last_run_timestamp_seconds",
			Help: "unix time the last run finished",
		}),
	}

	m.registry.MustRegister(m.nodes, m.records, m.cells, m.table, m.lastRun)

	return m
}

func (m *runMetrics) observe(r *Result, now time.Time) {
	s := r.Summary

	m.nodes.WithLabelValues("visited").Set(float64(s.Visited))
	m.nodes.WithLabelValues("skipped").Set(float64(len(s.Skipped)))
	m.nodes.WithLabelValues("unstyled").Set(float64(s.Unstyled))
	m.records.Set(float64(s.Records))

	filled := 0
	for _, row := range r.Table.Rows {
		for _, c := range row.Cells {
			if c != "" {
				filled++
			}
		}
	}
	m.cells.WithLabelValues("filled").Set(float64(filled))
	m.cells.WithLabelValues("empty").Set(float64(s.Rows*s.Themes - filled))
	m.cells.WithLabelValues("overwritten").Set(float64(len(s.Conflicts)))

	m.table.WithLabelValues("rows").Set(float64(s.Rows))
	m.table.WithLabelValues("themes").Set(float64(s.Themes))
	m.lastRun.Set(float64(now.Unix()))
}

// WriteMetrics stores the run summary in the Prometheus text format at path,
// for collection by the node exporter textfile collector.
func WriteMetrics(path string, r *Result) error {
	m := newRunMetrics()
	m.observe(r, time.Now())
	return prometheus.WriteToTextfile(path, m.registry)
}
