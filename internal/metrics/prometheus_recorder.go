package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	entries       *prom.CounterVec
	bytesWritten  prom.Counter
	lastSuccess   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "webbuild",
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "webbuild",
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.entries = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "webbuild",
		Name:      "entries_total",
		Help:      "Output entries produced by kind",
	}, []string{"kind"})
	pr.bytesWritten = prom.NewCounter(prom.CounterOpts{
		Namespace: "webbuild",
		Name:      "bytes_written_total",
		Help:      "Bytes written to the output tree",
	})
	pr.lastSuccess = prom.NewGauge(prom.GaugeOpts{
		Namespace: "webbuild",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful build",
	})
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.entries, pr.bytesWritten, pr.lastSuccess)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome Outcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
	if outcome == OutcomeSuccess {
		p.lastSuccess.SetToCurrentTime()
	}
}

func (p *PrometheusRecorder) IncEntry(kind EntryKind) {
	if p == nil {
		return
	}
	p.entries.WithLabelValues(string(kind)).Inc()
}

func (p *PrometheusRecorder) AddBytesWritten(n int64) {
	if p == nil || n <= 0 {
		return
	}
	p.bytesWritten.Add(float64(n))
}

// WriteTextfile dumps the registry in text exposition format for the
// node_exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
