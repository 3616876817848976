// Package api assembles the HTTP surface: routes, CORS and request metrics.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"strategic_finance/pkg/api/config"
	"strategic_finance/pkg/api/finance"
	"strategic_finance/pkg/core/metrics"
)

// NewRouter registers every route on a fresh ServeMux.
func NewRouter(fin *finance.Handler, cfg *config.Handler) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, instrument(route, h))
	}

	handle("GET /{$}", "/", fin.HandleHealth)
	handle("GET /api/v1/search", "/api/v1/search", fin.HandleSearch)
	handle("GET /api/v1/export/excel/{id}", "/api/v1/export/excel/{id}", fin.HandleExportExcel)
	handle("GET /api/v1/models/{id}", "/api/v1/models/{id}", fin.HandleModel)
	handle("GET /api/v1/models/{id}/report", "/api/v1/models/{id}/report", fin.HandleReport)
	handle("GET /api/v1/revenue-drivers", "/api/v1/revenue-drivers", fin.HandleRevenueDrivers)

	handle("GET /api/config", "/api/config", cfg.HandleConfig)
	handle("POST /api/config/switch", "/api/config/switch", cfg.HandleSwitch)

	mux.Handle("GET /metrics", promhttp.Handler())

	return withCORS(mux)
}

// withCORS allows every origin and answers preflight requests directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
