package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := NewMiddleware("test")
	reg := prometheus.NewRegistry()
	m.MustRegister(reg)

	router := mux.NewRouter()
	router.HandleFunc("/api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	router.Use(m.Handler)

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("404", "GET", "/api/jobs/{id}")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))
}

func TestJobCounters(t *testing.T) {
	before := testutil.ToFloat64(jobsFinishedMetric.WithLabelValues("failed"))

	IncreaseJobsFinished("failed")

	assert.Equal(t, before+1, testutil.ToFloat64(jobsFinishedMetric.WithLabelValues("failed")))
}
