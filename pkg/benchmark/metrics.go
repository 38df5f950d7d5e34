package benchmark

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gocrane/imputebench/pkg/consts"
	"github.com/gocrane/imputebench/pkg/imputer"
)

const metricsNamespace = consts.ImputeBenchName

// Candidate results recorded in metrics.
const (
	resultScored     = "scored"
	resultFailed     = "failed"
	resultUnresolved = "unresolved"

	trialCompleted = "completed"
	trialSkipped   = "skipped"
)

// Metrics counts what happens during one optimizer run. Each optimizer owns its
// registry, so runs never share counters.
type Metrics struct {
	Registry *prometheus.Registry

	trialsTotal     *prometheus.CounterVec
	trialDuration   prometheus.Histogram
	candidatesTotal *prometheus.CounterVec
	candidateDev    *prometheus.HistogramVec
	winsTotal       *prometheus.CounterVec
}

func NewMetrics(runId string) *Metrics {
	constLabels := prometheus.Labels{consts.LabelRun: runId}
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		trialsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "trials_total",
			Help:        "Trials run, by result.",
			ConstLabels: constLabels,
		}, []string{consts.LabelResult}),
		trialDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "trial_duration_seconds",
			Help:        "Time spent evaluating the whole grid in one trial.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		candidatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "candidates_total",
			Help:        "Candidates evaluated, by family and result.",
			ConstLabels: constLabels,
		}, []string{consts.LabelFamily, consts.LabelResult}),
		candidateDev: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "candidate_deviation",
			Help:        "Deviation of scored candidates, by family.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{consts.LabelFamily}),
		winsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "wins_total",
			Help:        "Trials won, by method.",
			ConstLabels: constLabels,
		}, []string{consts.LabelMethod}),
	}
	m.Registry.MustRegister(m.trialsTotal, m.trialDuration, m.candidatesTotal, m.candidateDev, m.winsTotal)
	return m
}

func (m *Metrics) observeCandidate(d imputer.Descriptor, deviation float64) {
	m.candidatesTotal.WithLabelValues(d.Family, resultScored).Inc()
	m.candidateDev.WithLabelValues(d.Family).Observe(deviation)
}

func (m *Metrics) candidateFailed(d imputer.Descriptor, result string) {
	m.candidatesTotal.WithLabelValues(d.Family, result).Inc()
}

func (m *Metrics) observeTrial(outcome *TrialOutcome, start time.Time) {
	m.trialDuration.Observe(time.Since(start).Seconds())
	if outcome == nil {
		m.trialsTotal.WithLabelValues(trialSkipped).Inc()
		return
	}
	m.trialsTotal.WithLabelValues(trialCompleted).Inc()
	m.winsTotal.WithLabelValues(outcome.Descriptor.String()).Inc()
}

// WriteToTextfile writes the run metrics to filename in the text exposition format.
func (m *Metrics) WriteToTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.Registry)
}
