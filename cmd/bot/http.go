package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proton-105/pricerelay-bot/internal/health"
	"github.com/Proton-105/pricerelay-bot/internal/lifecycle"
	"github.com/Proton-105/pricerelay-bot/internal/middleware"
	"github.com/Proton-105/pricerelay-bot/pkg/logger"
)

func newHTTPHandler(log *slog.Logger, checker *health.Checker, probes lifecycle.HealthChecker) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())
		status := http.StatusOK
		for _, result := range results {
			if result != health.StatusOK {
				status = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, status, results)
	})
	mux.HandleFunc("/health/live", probeHandler(probes.Liveness))
	mux.HandleFunc("/health/ready", probeHandler(probes.Readiness))

	return logger.Middleware(middleware.New(log)(mux))
}

func probeHandler(probe func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := probe(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
