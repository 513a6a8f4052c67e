package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry agrupa las métricas de la app en un registry propio (no el global),
// así cada router/test tiene el suyo.
type Registry struct {
	reg *prometheus.Registry

	methodDuration *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		methodDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "petclinic",
				Name:      "method_duration_seconds",
				Help:      "Execution time of timed methods",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 9),
			},
			[]string{"method", "outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "petclinic",
				Name:      "http_requests_total",
				Help:      "HTTP requests by route pattern and status",
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(
		r.methodDuration,
		r.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveMethod implementa timing.Recorder.
func (r *Registry) ObserveMethod(method, outcome string, elapsed time.Duration) {
	r.methodDuration.WithLabelValues(method, outcome).Observe(elapsed.Seconds())
}

func (r *Registry) ObserveRequest(method, route, status string) {
	r.httpRequests.WithLabelValues(method, route, status).Inc()
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
