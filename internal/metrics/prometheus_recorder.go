package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	mutations         *prom.CounterVec
	mutationsRejected *prom.CounterVec
	notices           *prom.CounterVec
	saves             *prom.CounterVec
	saveDuration      prom.Histogram
	activeSessions    prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.mutations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "editor_mutations_total",
			Help:      "Applied document mutations by operation",
		}, []string{"op"})
		pr.mutationsRejected = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "editor_mutations_rejected_total",
			Help:      "Rejected or no-op mutations by operation and error category",
		}, []string{"op", "category"})
		pr.notices = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "editor_notices_total",
			Help:      "User-facing notices by level",
		}, []string{"level"})
		pr.saves = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "editor_saves_total",
			Help:      "Save attempts by outcome",
		}, []string{"result"})
		pr.saveDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "editor_save_duration_seconds",
			Help:      "Duration of persist calls",
			Buckets:   prom.DefBuckets,
		})
		pr.activeSessions = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitebuilder",
			Name:      "editor_active_sessions",
			Help:      "Currently open editor sessions",
		})
		reg.MustRegister(pr.mutations, pr.mutationsRejected, pr.notices, pr.saves, pr.saveDuration, pr.activeSessions)
	})
	return pr
}

func (p *PrometheusRecorder) RecordMutation(op string) {
	if p == nil || p.mutations == nil {
		return
	}
	p.mutations.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) RecordMutationRejected(op, category string) {
	if p == nil || p.mutationsRejected == nil {
		return
	}
	p.mutationsRejected.WithLabelValues(op, category).Inc()
}

func (p *PrometheusRecorder) RecordNotice(level string) {
	if p == nil || p.notices == nil {
		return
	}
	p.notices.WithLabelValues(level).Inc()
}

func (p *PrometheusRecorder) RecordSave(result string) {
	if p == nil || p.saves == nil {
		return
	}
	p.saves.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) ObserveSaveDuration(d time.Duration) {
	if p == nil || p.saveDuration == nil {
		return
	}
	p.saveDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetActiveSessions(n int) {
	if p == nil || p.activeSessions == nil {
		return
	}
	p.activeSessions.Set(float64(n))
}
