package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/medreport-assistant/internal/config"
	"github.com/kirillkom/medreport-assistant/internal/core/ports"
	"github.com/kirillkom/medreport-assistant/internal/observability/metrics"
)

const serviceName = "medreport-api"

type Router struct {
	processor ports.ReportProcessor
	metrics   *metrics.HTTPServerMetrics

	apiKey             string
	maxUploadBytes     int64
	maxFiles           int
	corsAllowedOrigins []string
	rateLimitRPS       float64
	rateLimitBurst     int
	maxInFlight        int
	backpressureWait   time.Duration
}

func NewRouter(cfg config.Config, processor ports.ReportProcessor, httpMetrics *metrics.HTTPServerMetrics) *Router {
	return &Router{
		processor:          processor,
		metrics:            httpMetrics,
		apiKey:             cfg.APIKey,
		maxUploadBytes:     cfg.MaxUploadBytes(),
		maxFiles:           cfg.MaxFiles,
		corsAllowedOrigins: cfg.CORSAllowedOrigins,
		rateLimitRPS:       cfg.APIRateLimitRPS,
		rateLimitBurst:     cfg.APIRateLimitBurst,
		maxInFlight:        cfg.APIMaxInFlight,
		backpressureWait:   time.Duration(cfg.APIBackpressureWaitMS) * time.Millisecond,
	}
}

func (rt *Router) Handler() http.Handler {
	pipeline := func(h http.HandlerFunc) http.Handler {
		var next http.Handler = h
		next = backpressureMiddleware(next, rt.maxInFlight, rt.backpressureWait)
		next = rt.authMiddleware(next)
		next = rateLimitMiddleware(next, rt.rateLimitRPS, rt.rateLimitBurst)
		return rt.countRejections(next)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", serveOpenAPI)
	mux.Handle("POST /api/testing", pipeline(rt.processTesting))
	mux.Handle("POST /api/reports", pipeline(rt.processReports))
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = corsMiddleware(handler, rt.corsAllowedOrigins)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// countRejections records 401/429/503 answers given before the pipeline ran.
func (rt *Router) countRejections(next http.Handler) http.Handler {
	if rt.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)
		switch recorder.statusCode {
		case http.StatusUnauthorized:
			rt.metrics.RecordRejection(serviceName, "unauthorized")
		case http.StatusTooManyRequests:
			rt.metrics.RecordRejection(serviceName, "rate_limited")
		case http.StatusServiceUnavailable:
			rt.metrics.RecordRejection(serviceName, "overloaded")
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
