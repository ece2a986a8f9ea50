package server

import (
	"log/slog"
	"net/http"

	authHandlers "starscape-server/internal/auth/handlers"
	"starscape-server/internal/middleware"
	serverHandlers "starscape-server/internal/server/handlers"
	"starscape-server/internal/shared/database"
	"starscape-server/internal/shared/redis"
	"starscape-server/internal/universe"
	universeHandlers "starscape-server/internal/universe/handlers"
)

type Routes struct {
	db              *database.DB
	cache           *redis.Client
	universeService *universe.Service
	logger          *slog.Logger
}

func NewRoutes(db *database.DB, cache *redis.Client, universeService *universe.Service, logger *slog.Logger) *Routes {
	return &Routes{
		db:              db,
		cache:           cache,
		universeService: universeService,
		logger:          logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.cache)
	tokenHandler := authHandlers.NewTokenHandler(r.logger)
	universeHandler := universeHandlers.NewUniverseHandler(r.universeService, r.logger)
	discoveryHandler := universeHandlers.NewDiscoveryHandler(r.universeService, r.logger)
	adminHandler := universeHandlers.NewAdminHandler(r.universeService, r.logger)

	// Public endpoints
	mux.Handle("GET /api/server/health", healthHandler)
	mux.HandleFunc("POST /api/auth/token", tokenHandler.IssueToken)
	mux.HandleFunc("GET /api/universe/view", universeHandler.GetView)
	mux.HandleFunc("POST /api/universe/position", universeHandler.UpdatePosition)
	mux.HandleFunc("GET /api/universe/status", universeHandler.GetStatus)
	mux.HandleFunc("GET /api/universe/share", universeHandler.GetShareLink)
	mux.HandleFunc("GET /api/objects/{key}", universeHandler.GetObject)
	mux.HandleFunc("POST /api/discoveries", discoveryHandler.MarkDiscovery)
	mux.HandleFunc("GET /api/discoveries", discoveryHandler.ListDiscoveries)
	mux.HandleFunc("GET /api/discoveries/summary", discoveryHandler.GetSummary)

	// Admin-only endpoints (authenticated + admin role)
	mux.Handle("POST /api/admin/seed", middleware.RequireAdmin(http.HandlerFunc(adminHandler.SetSeed)))
	mux.Handle("POST /api/admin/reset", middleware.RequireAdmin(http.HandlerFunc(adminHandler.Reset)))
	mux.Handle("POST /api/admin/debug-objects", middleware.RequireAdmin(http.HandlerFunc(adminHandler.AddDebugObjects)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{
			"/api/server/health", "/api/auth/token", "/api/universe/view",
			"/api/universe/position", "/api/universe/status", "/api/universe/share",
			"/api/objects/{key}", "/api/discoveries", "/api/discoveries/summary",
		},
		"admin_endpoints", []string{"/api/admin/seed", "/api/admin/reset", "/api/admin/debug-objects"},
	)

	return mux
}
