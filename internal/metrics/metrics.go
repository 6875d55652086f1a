package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RecordsCreated       *prometheus.CounterVec
	ValidationRejections *prometheus.CounterVec
	RecordsDropped       *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_records_created_total",
			Help: "Total number of records inserted, by kind",
		}, []string{"kind"}),
		ValidationRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_validation_rejections_total",
			Help: "Total number of create requests rejected by validation, by kind and code",
		}, []string{"kind", "code"}),
		RecordsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_records_dropped_total",
			Help: "Total number of malformed stored records skipped while listing, by kind",
		}, []string{"kind"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claims_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementRecordsCreated(kind string) {
	if m == nil {
		return
	}
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementValidationRejections(kind, code string) {
	if m == nil {
		return
	}
	m.ValidationRejections.WithLabelValues(kind, code).Inc()
}

func (m *Metrics) IncrementRecordsDropped(kind string) {
	if m == nil {
		return
	}
	m.RecordsDropped.WithLabelValues(kind).Inc()
}

// Middleware observes request latency labelled by the matched chi route
// pattern, so path parameters do not blow up label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
