// Package metrics exposes ingestion outcomes as Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.PipelineObserver = (*Observer)(nil)

const namespace = "paperweight"

// Observer counts pipeline outcomes on its own registry.
type Observer struct {
	registry   *prometheus.Registry
	discovered *prometheus.CounterVec
	persisted  *prometheus.CounterVec
	skipped    prometheus.Counter
	failed     prometheus.Counter
	fileErrors prometheus.Counter
}

// NewObserver creates an observer with a fresh registry.
// Go runtime and process collectors are registered alongside the
// pipeline counters.
func NewObserver() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		discovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_discovered_total",
			Help:      "Links classified in scanned documents, by category.",
		}, []string{"category"}),
		persisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_persisted_total",
			Help:      "Records inserted into the store, by status.",
		}, []string{"status"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_skipped_total",
			Help:      "Links skipped because a record already exists.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_failed_total",
			Help:      "Links abandoned without a record.",
		}),
		fileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_errors_total",
			Help:      "Source files reported and skipped.",
		}),
	}

	o.registry.MustRegister(
		o.discovered, o.persisted, o.skipped, o.failed, o.fileErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Pre-create label values so every series is exported from the start.
	for _, c := range domain.AllCategories {
		o.discovered.WithLabelValues(c.String())
	}
	for _, s := range []domain.PaperStatus{
		domain.StatusProcessed, domain.StatusExtractionFailed, domain.StatusOversized,
		domain.StatusUnreachable, domain.StatusMalformed,
	} {
		o.persisted.WithLabelValues(s.String())
	}
	return o
}

// LinkDiscovered increments the discovered counter for category.
func (o *Observer) LinkDiscovered(category domain.Category) {
	o.discovered.WithLabelValues(category.String()).Inc()
}

// LinkSkipped increments the skipped counter.
func (o *Observer) LinkSkipped() { o.skipped.Inc() }

// RecordPersisted increments the persisted counter for status.
func (o *Observer) RecordPersisted(status domain.PaperStatus) {
	o.persisted.WithLabelValues(status.String()).Inc()
}

// LinkFailed increments the failed counter.
func (o *Observer) LinkFailed() { o.failed.Inc() }

// FileFailed increments the file error counter.
func (o *Observer) FileFailed() { o.fileErrors.Inc() }

// Registry returns the registry the counters are registered on.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler returns an HTTP handler serving the registry in the text exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
