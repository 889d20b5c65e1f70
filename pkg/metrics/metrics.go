package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registrar detection.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Detection outcomes by resolution method and registrar code
	DetectOutcome *prometheus.CounterVec

	// Collaborator latencies by stage
	StageLatency *prometheus.HistogramVec

	// WHOIS failures by reason: status, malformed, timeout, unavailable, panic
	WhoisFailures *prometheus.CounterVec

	// Overall detect latency including fallback
	DetectLatency prometheus.Histogram

	// Detections currently running in batch scans
	ScanInFlight prometheus.Gauge
}

// New creates Metrics registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		DetectOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "whodns_detect_outcomes_total",
			Help: "Total detections by resolution method and registrar code",
		}, []string{"method", "code"}), // method: "whois", "nameservers", "none"

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "whodns_detect_stage_duration_seconds",
			Help:    "Duration of collaborator calls by stage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}), // stage: "whois", "nameservers"

		WhoisFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "whodns_whois_failures_total",
			Help: "WHOIS lookups that fell back to nameserver detection, by reason",
		}, []string{"reason"}),

		DetectLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "whodns_detect_duration_seconds",
			Help:    "Duration of a full detection including fallback",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),

		ScanInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "whodns_scan_in_flight",
			Help: "Detections currently running in batch scans",
		}),
	}
}

// IncrementOutcome records a detection result.
func (m *Metrics) IncrementOutcome(method, code string) {
	if m != nil {
		m.DetectOutcome.WithLabelValues(method, code).Inc()
	}
}

// ObserveStage records the duration of a collaborator call.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementWhoisFailure records why WHOIS could not be used.
func (m *Metrics) IncrementWhoisFailure(reason string) {
	if m != nil {
		m.WhoisFailures.WithLabelValues(reason).Inc()
	}
}

// ObserveDetect records the total detection duration.
func (m *Metrics) ObserveDetect(d time.Duration) {
	if m != nil {
		m.DetectLatency.Observe(d.Seconds())
	}
}

// ScanStarted marks a batch detection as running.
func (m *Metrics) ScanStarted() {
	if m != nil {
		m.ScanInFlight.Inc()
	}
}

// ScanFinished marks a batch detection as done.
func (m *Metrics) ScanFinished() {
	if m != nil {
		m.ScanInFlight.Dec()
	}
}
