// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedTotal     *prometheus.CounterVec
	pagesFailedTotal      *prometheus.CounterVec
	recordsExtractedTotal *prometheus.CounterVec
	recordsDroppedTotal   prometheus.Counter
	evictionsTotal        prometheus.Counter
	recordsPersistedTotal *prometheus.CounterVec
	storeBytes            prometheus.Gauge

	once sync.Once
)

// Init registers the collectors against the default registry. It is
// safe to call multiple times; helpers are no-ops until it runs.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_pages_fetched_total",
				Help: "Listing pages fetched successfully, labeled by source.",
			},
			[]string{"source"},
		)
		pagesFailedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_pages_failed_total",
				Help: "Listing pages skipped after fetch or extraction failure, labeled by source.",
			},
			[]string{"source"},
		)
		recordsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_records_extracted_total",
				Help: "Raw records produced by workers, labeled by source.",
			},
			[]string{"source"},
		)
		recordsDroppedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvest_records_dropped_total",
				Help: "Records discarded because a mandatory field could not be normalized.",
			},
		)
		evictionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvest_store_evictions_total",
				Help: "Eviction rounds performed to keep the document store under quota.",
			},
		)
		recordsPersistedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvest_records_persisted_total",
				Help: "Records written to a sink, labeled by sink kind.",
			},
			[]string{"sink"},
		)
		storeBytes = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "harvest_store_bytes",
				Help: "Last observed document store size in bytes.",
			},
		)
	})
}

// PageFetched counts one successfully fetched listing page.
func PageFetched(source string) {
	if pagesFetchedTotal != nil {
		pagesFetchedTotal.WithLabelValues(source).Inc()
	}
}

// PageFailed counts one skipped URL.
func PageFailed(source string) {
	if pagesFailedTotal != nil {
		pagesFailedTotal.WithLabelValues(source).Inc()
	}
}

// RecordExtracted counts one raw record produced by a worker.
func RecordExtracted(source string) {
	if recordsExtractedTotal != nil {
		recordsExtractedTotal.WithLabelValues(source).Inc()
	}
}

// RecordDropped counts one record discarded during normalization.
func RecordDropped() {
	if recordsDroppedTotal != nil {
		recordsDroppedTotal.Inc()
	}
}

// Eviction counts one eviction round in the bounded store writer.
func Eviction() {
	if evictionsTotal != nil {
		evictionsTotal.Inc()
	}
}

// RecordsPersisted counts records written to the named sink.
func RecordsPersisted(sink string, n int) {
	if recordsPersistedTotal != nil {
		recordsPersistedTotal.WithLabelValues(sink).Add(float64(n))
	}
}

// ObserveStoreBytes records the latest document store size.
func ObserveStoreBytes(n int64) {
	if storeBytes != nil {
		storeBytes.Set(float64(n))
	}
}
