package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "deceit"

// Recorder exports replay and pagination counters. Room and object ids are
// left out of the label set to keep series bounded.
type Recorder struct {
	reg *prometheus.Registry

	ticks        prometheus.Counter
	ended        prometheus.Counter
	malformed    *prometheus.CounterVec
	pages        prometheus.Counter
	records      prometheus.Counter
	drains       *prometheus.CounterVec
	drainRecords prometheus.Histogram
	failures     *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{reg: prometheus.NewRegistry()}
	r.ticks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "replay",
		Name:      "ticks_total",
		Help:      "Replay timer ticks applied.",
	})
	r.ended = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "replay",
		Name:      "playbacks_ended_total",
		Help:      "Playbacks that reached the end of their log.",
	})
	r.malformed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "replay",
		Name:      "malformed_events_total",
		Help:      "Events skipped because required fields were missing.",
	}, []string{"event_type"})
	r.pages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "collection",
		Name:      "pages_fetched_total",
		Help:      "Collection pages fetched from the chain.",
	})
	r.records = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "collection",
		Name:      "records_fetched_total",
		Help:      "Collection records received across all pages.",
	})
	r.drains = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "collection",
		Name:      "drains_total",
		Help:      "Completed drains by outcome.",
	}, []string{"outcome"})
	r.drainRecords = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "collection",
		Name:      "drain_records",
		Help:      "Records returned by a completed drain.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
	r.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "collection",
		Name:      "drain_failures_total",
		Help:      "Failed drains by reason.",
	}, []string{"reason"})

	r.reg.MustRegister(
		r.ticks, r.ended, r.malformed,
		r.pages, r.records, r.drains, r.drainRecords, r.failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) RecordTick(string) { r.ticks.Inc() }

func (r *Recorder) RecordMalformedEvent(_ string, eventType string) {
	r.malformed.WithLabelValues(eventType).Inc()
}

func (r *Recorder) RecordPlaybackEnded(string) { r.ended.Inc() }

func (r *Recorder) RecordPage(_ string, records int) {
	r.pages.Inc()
	r.records.Add(float64(max(records, 0)))
}

func (r *Recorder) RecordDrain(_ string, records int, found bool) {
	if !found {
		r.drains.WithLabelValues("absent").Inc()
		return
	}
	r.drains.WithLabelValues("found").Inc()
	r.drainRecords.Observe(float64(records))
}

func (r *Recorder) RecordDrainFailure(_ string, reason string) {
	r.failures.WithLabelValues(reason).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
