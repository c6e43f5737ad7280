package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/tarek/provision/internal/api/handler"
	mw "github.com/tarek/provision/internal/api/middleware"
	"github.com/tarek/provision/internal/config"
	"github.com/tarek/provision/internal/core"
	"github.com/tarek/provision/internal/creds"
	"github.com/tarek/provision/internal/provider"
)

type Server struct {
	router         chi.Router
	logger         zerolog.Logger
	services       *core.Services
	corePool       *pgxpool.Pool
	temporalClient temporalclient.Client
	cfg            *config.Config
}

func NewServer(logger zerolog.Logger, coreDB *pgxpool.Pool, temporalClient temporalclient.Client, cfg *config.Config) *Server {
	resolver := creds.NewResolver(coreDB, creds.Defaults{
		CloudToken: cfg.HetznerAPIToken,
		SSHUser:    cfg.DefaultSSHUser,
		SSHPort:    cfg.DefaultSSHPort,
	})
	services := core.NewServices(coreDB, temporalClient, resolver, provider.NewHCloud)

	s := &Server{
		router:         chi.NewRouter(),
		logger:         logger,
		services:       services,
		corePool:       coreDB,
		temporalClient: temporalClient,
		cfg:            cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Projects
		project := handler.NewProject(s.services.Project, s.services.Sync)
		r.Get("/projects", project.List)
		r.Post("/projects", project.Create)
		r.Get("/projects/{id}", project.Get)
		r.Put("/projects/{id}", project.Update)
		r.Delete("/projects/{id}", project.Delete)
		r.Post("/projects/{id}/sync", project.Sync)
		r.Post("/sync", project.SyncAll)

		// Servers
		server := handler.NewServer(s.services.Server, s.services.Operation)
		r.Get("/servers", server.List)
		r.Post("/servers", server.RegisterSelfHosted)
		r.Get("/servers/{id}", server.Get)
		r.Post("/servers/{id}/power", server.Power)
		r.Post("/servers/{id}/test-connection", server.TestConnection)
		r.Get("/servers/{id}/operations", server.ListOperations)
		r.Post("/servers/{id}/operations", server.RunOperation)

		// Operations
		operation := handler.NewOperation(s.services.Operation)
		r.Get("/operations/{id}", operation.Get)
		r.Get("/operations/{id}/log", operation.Log)

		// Server requests
		serverRequest := handler.NewServerRequest(s.services.Request)
		r.Get("/requests", serverRequest.List)
		r.Post("/requests", serverRequest.Submit)
		r.Get("/requests/{id}", serverRequest.Get)
		r.Get("/requests/{id}/status", serverRequest.Status)
		r.Post("/requests/{id}/approve", serverRequest.Approve)
		r.Post("/requests/{id}/reject", serverRequest.Reject)

		// Provider catalogs
		catalog := handler.NewCatalog(s.services.Catalog)
		r.Get("/catalog/images", catalog.Images)
		r.Get("/catalog/server-types", catalog.ServerTypes)
		r.Get("/catalog/locations", catalog.Locations)

		// Notifications
		notification := handler.NewNotification(s.services.Notification)
		r.Get("/users/{id}/notifications", notification.ListForUser)
		r.Post("/notifications/{id}/read", notification.MarkRead)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.corePool.Ping(ctx); err != nil {
		checks["core_db"] = err.Error()
		healthy = false
	} else {
		checks["core_db"] = "ok"
	}

	if _, err := s.temporalClient.CheckHealth(ctx, &temporalclient.CheckHealthRequest{}); err != nil {
		checks["temporal"] = err.Error()
		healthy = false
	} else {
		checks["temporal"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
