// Chargewatch - EV Charging Station Monitor for Home Automation
// Copyright 2026 Chargewatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chargewatch/chargewatch

// HTTP routing using Chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chargewatch/chargewatch/internal/middleware"
)

// Router bundles the handler and its middleware stack.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the given handler and middleware factory.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiHandlerFunc(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes using Chi router. Every data
// endpoint is GET-only; other methods get a 405 with the flat error
// shape.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// ========================
	// Health and Metrics
	// ========================
	// Permissive rate limiting: monitoring probes arrive frequently
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/health", router.handler.Health)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	})

	// ========================
	// Legacy Status Endpoints
	// ========================
	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiHandlerFunc(middleware.PrometheusMetrics))

		r.Get("/status", router.handler.Status)
		r.Get("/refresh", router.handler.Refresh)

		// ========================
		// v1 Automation Endpoints
		// ========================
		r.Route("/v1", func(r chi.Router) {
			r.Get("/stations", router.handler.Stations)
			r.Get("/station/{id}", router.handler.StationByID)
			r.Get("/summary", router.handler.Summary)
		})
	})

	return r
}
