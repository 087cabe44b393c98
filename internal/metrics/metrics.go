// Package metrics records analysis activity on a private Prometheus registry that
// can be written out as a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ecalab"

// Recorder is safe for concurrent use. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	analyses      *prometheus.CounterVec
	failures      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rulesSurveyed *prometheus.CounterVec
	runsSaved     prometheus.Counter
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by kind",
		}, []string{"kind"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_failures_total",
			Help:      "Failed analyses by kind",
		}, []string{"kind"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Analysis wall time in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"kind"}),
		rulesSurveyed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "survey",
			Name:      "rules_total",
			Help:      "Rules evaluated by whole-rule-space surveys",
		}, []string{"kind"}),
		runsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_saved_total",
			Help:      "Reports persisted to the store",
		}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Observe records one finished analysis of the given kind.
func (r *Recorder) Observe(kind string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.failures.WithLabelValues(kind).Inc()
		return
	}
	r.analyses.WithLabelValues(kind).Inc()
	r.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (r *Recorder) Surveyed(kind string, rules int) {
	if r == nil {
		return
	}
	r.rulesSurveyed.WithLabelValues(kind).Add(float64(rules))
}

func (r *Recorder) Saved() {
	if r == nil {
		return
	}
	r.runsSaved.Inc()
}

// WriteTextfile writes every metric in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
