package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	RequestsCollectorName = "http_requests_total"
	LatencyCollectorName  = "http_request_duration_milliseconds"
)

var bucketsConfig = []float64{50, 300, 1000, 5000, 30000}

// Middleware exposes prometheus metrics for the number of requests and their
// latency, partitioned by status code, method and route template.
type Middleware struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewMiddleware(name string) *Middleware {
	var m Middleware
	m.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        RequestsCollectorName,
			Help:        "Number of HTTP requests partitioned by status code, method and HTTP path.",
			ConstLabels: prometheus.Labels{"service": name},
		}, []string{"code", "method", "path"})

	m.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        LatencyCollectorName,
		Help:        "Time spent on the request partitioned by status code, method and HTTP path.",
		ConstLabels: prometheus.Labels{"service": name},
		Buckets:     bucketsConfig,
	}, []string{"code", "method", "path"})

	return &m
}

// Handler is a mux.MiddlewareFunc.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// use the template so job ids don't explode the label set
		path := "unknown"
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		since := float64(time.Since(start).Milliseconds())
		m.requests.WithLabelValues(strconv.Itoa(ww.Status()), r.Method, path).Inc()
		m.latency.WithLabelValues(strconv.Itoa(ww.Status()), r.Method, path).Observe(since)
	}
	return http.HandlerFunc(fn)
}

// MustRegister registers the collectors with the given registerer.
func (m *Middleware) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.requests, m.latency)
}
