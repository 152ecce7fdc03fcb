package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// loggingMiddleware logs each request once it's done; failures at warn / error,
// everything else at debug.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log := zap.S().Named("http").With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", path,
			"query", r.URL.RawQuery,
			"status", ww.Status(),
			"latency", time.Since(start),
			"response_bytes", ww.BytesWritten(),
		)
		switch {
		case ww.Status() >= 500:
			log.Error("request completed")
		case ww.Status() >= 400:
			log.Warn("request completed")
		default:
			log.Debug("request completed")
		}
	})
}
