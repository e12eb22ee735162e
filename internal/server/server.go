// Package server exposes the telemetry services over HTTP and keeps the
// cache warm with a background refresher.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Server is the connectlog HTTP server.
type Server struct {
	httpServer *http.Server
	refresher  *Refresher
}

// New builds the server: routes, middleware, metrics endpoint, and
// optionally a background cache refresher (nil to disable).
func New(port int, summaries SummaryProvider, activities ActivityProvider, rdns ReadinessProvider, metrics *Metrics, refresher *Refresher) *Server {
	router := mux.NewRouter()

	router.Use(panicRecovery(metrics))
	router.Use(logRequest())
	router.Use(requestMetrics(metrics))

	NewHandler(router, summaries, activities, rdns)
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute, // cold fetches walk the whole period
		},
		refresher: refresher,
	}
}

// ListenAndServe starts the refresher and serves until the server is shut
// down.
func (s *Server) ListenAndServe() error {
	if s.refresher != nil {
		s.refresher.Start()
	}

	log.Infof("listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the refresher and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.refresher != nil {
		s.refresher.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
