package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"webhook-proxy/internal/handlers"
	"webhook-proxy/internal/metrics"
	"webhook-proxy/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.Handlers) {
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.MetricsMiddleware)

	// Liveness
	router.HandleFunc("/", h.Root).Methods(http.MethodGet)

	// Webhook
	router.HandleFunc("/generic-webhook-endpoint", h.HandleGenericWebhook).Methods(http.MethodPost)

	// Operations
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
}
