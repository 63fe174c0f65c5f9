package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	shadowid "github.com/shadowid/shadowid"
	"github.com/shadowid/shadowid/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() shadowid.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter renders engine counters as Prometheus metrics. It collects from
// a point-in-time snapshot, so scrapes never contend with the hot path.
type Exporter struct {
	source       metricsSource
	descs        map[shadowid.MetricID]*prometheus.Desc
	droppedDesc  *prometheus.Desc
	orderedDescs []*prometheus.Desc
}

var _ prometheus.Collector = (*Exporter)(nil)

// NewExporter creates an exporter reading from the given engine.
func NewExporter(engine *shadowid.Engine) *Exporter {
	return NewExporterFromSource(engine)
}

// NewExporterFromSource creates an exporter from a custom metrics source.
func NewExporterFromSource(source metricsSource) *Exporter {
	e := &Exporter{
		source: source,
		descs:  make(map[shadowid.MetricID]*prometheus.Desc, len(internaldefs.CounterDefs)),
	}
	for _, def := range internaldefs.CounterDefs {
		d := prometheus.NewDesc(def.Name, def.Help, nil, nil)
		e.descs[def.ID] = d
		e.orderedDescs = append(e.orderedDescs, d)
	}
	e.droppedDesc = prometheus.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil)
	return e
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	if e == nil {
		return
	}
	for _, d := range e.orderedDescs {
		ch <- d
	}
	ch <- e.droppedDesc
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e == nil || e.source == nil {
		return
	}
	snapshot := e.source.MetricsSnapshot()
	for _, def := range internaldefs.CounterDefs {
		ch <- prometheus.MustNewConstMetric(
			e.descs[def.ID],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.ID]),
		)
	}
	ch <- prometheus.MustNewConstMetric(
		e.droppedDesc,
		prometheus.CounterValue,
		float64(e.source.AuditDropped()),
	)
}

// Handler returns an http.Handler serving the exporter through a private
// registry.
func (e *Exporter) Handler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(e)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
