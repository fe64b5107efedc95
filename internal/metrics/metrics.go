// Package metrics exports timetable service and HTTP activity to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/school-timetable/internal/application"
)

const namespace = "timetable"

// Recorder implements application.Metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	templates       prometheus.Counter
	templateWarns   prometheus.Counter
	saves           *prometheus.CounterVec
	placementErrors *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

var _ application.Metrics = (*Recorder)(nil)

// New registers the timetable collectors plus the Go and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		templates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "templates_generated_total",
			Help:      "Week templates generated from the configuration form.",
		}),
		templateWarns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_warnings_total",
			Help:      "Configuration warnings attached to generated templates.",
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timetables_saved_total",
			Help:      "Timetables stored, by whether an existing one was replaced.",
		}, []string{"replaced"}),
		placementErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placement_rejections_total",
			Help:      "Days that could not be laid out on the display grid.",
		}, []string{"reason"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_cache_lookups_total",
			Help:      "Week grid cache lookups by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.templates,
		r.templateWarns,
		r.saves,
		r.placementErrors,
		r.cacheLookups,
		r.requests,
		r.latency,
	)
	return r
}

func (r *Recorder) TemplateGenerated(warnings int) {
	r.templates.Inc()
	r.templateWarns.Add(float64(warnings))
}

func (r *Recorder) TimetableSaved(replaced bool) {
	r.saves.WithLabelValues(strconv.FormatBool(replaced)).Inc()
}

func (r *Recorder) PlacementRejected(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	r.placementErrors.WithLabelValues(reason).Inc()
}

func (r *Recorder) GridCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Middleware counts requests and observes their latency.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	counted := promhttp.InstrumentHandlerCounter(r.requests, next)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		counted.ServeHTTP(w, req)
		r.latency.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	})
}
