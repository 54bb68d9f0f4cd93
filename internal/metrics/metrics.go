package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pixel_ranking"

// Metrics 排行榜服务的监控指标
type Metrics struct {
	registry *prometheus.Registry

	Placements      prometheus.Counter
	JobRuns         *prometheus.CounterVec
	NegativeDeltas  *prometheus.CounterVec
	HourlyCountries prometheus.Gauge
}

// New 创建并注册指标，registry 为 nil 时使用独立的新 registry
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		Placements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placements_total",
			Help:      "Number of pixel placements recorded.",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Number of periodic job runs by job and result.",
		}, []string{"job", "result"}),
		NegativeDeltas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negative_deltas_total",
			Help:      "Number of negative deltas that were dropped instead of persisted.",
		}, []string{"series"}),
		HourlyCountries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "hourly_countries",
			Help:      "Number of countries written by the last hourly aggregation.",
		}),
	}
	registry.MustRegister(m.Placements, m.JobRuns, m.NegativeDeltas, m.HourlyCountries)
	return m
}

// ObserveJob 记录一次定时任务的执行结果
func (m *Metrics) ObserveJob(job string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.JobRuns.WithLabelValues(job, result).Inc()
}

// Handler 返回 /metrics 接口
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
