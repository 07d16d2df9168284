// Route registration and go-chi router setup.
// Public routes (/health, /auth/token) vs JWT-protected routes (/ai/*).
package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/codevakure/bedrock-api-code/internal/api/handlers"
	apmiddleware "github.com/codevakure/bedrock-api-code/internal/api/middleware"
	"github.com/codevakure/bedrock-api-code/internal/domain/audit"
	"github.com/codevakure/bedrock-api-code/internal/domain/generation"
	"github.com/codevakure/bedrock-api-code/internal/domain/knowledgebase"
	"github.com/codevakure/bedrock-api-code/internal/domain/syncjob"
	"github.com/codevakure/bedrock-api-code/internal/infra/bedrock"
	"github.com/codevakure/bedrock-api-code/internal/infra/config"
	"github.com/codevakure/bedrock-api-code/internal/infra/eventbus"
)

// NewRouter creates and configures a chi router with all routes.
func NewRouter(cfg config.Config, db *sql.DB) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// Token exchange — public, the way into the protected routes
	authHandler := handlers.NewAuthHandler(cfg.APIKeyHash)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.Token) // POST /auth/token
	})

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	// All /ai/* routes require a valid Bearer JWT token.
	// AuthMiddleware validates the token and injects ClientID into context.
	r.Route("/ai", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)

		// Shared app services for protected APIs
		client := bedrock.NewClient(cfg.BedrockBaseURL, cfg.BedrockAPIKey)
		recorder := audit.NewService(db)
		engine := generation.NewService(client, client, recorder, cfg.DefaultModelARN)
		catalog := knowledgebase.NewService(client, client)
		bus := eventbus.New()
		syncSvc := syncjob.NewService(db, bus, func(ctx context.Context) error {
			return client.StartIngestionJob(ctx, cfg.KnowledgeBaseID)
		})

		queryHandler := handlers.NewQueryHandler(engine)
		modelsHandler := handlers.NewModelsHandler(catalog)
		kbHandler := handlers.NewKnowledgeBasesHandler(catalog)
		syncHandler := handlers.NewSyncHandler(syncSvc)
		auditHandler := handlers.NewAuditHandler(recorder)

		r.Post("/query", queryHandler.Query) // POST /ai/query (NDJSON stream)

		r.Route("/knowledgebase", func(r chi.Router) {
			r.Get("/models", modelsHandler.ListModels)  // GET /ai/knowledgebase/models
			r.Get("/all", kbHandler.ListKnowledgeBases) // GET /ai/knowledgebase/all
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/", syncHandler.StartSync)       // POST /ai/sync
			r.Get("/status", syncHandler.SyncStatus) // GET /ai/sync/status
			r.Get("/jobs", syncHandler.ListJobs)     // GET /ai/sync/jobs
		})

		r.Route("/audit", func(r chi.Router) {
			r.Get("/queries", auditHandler.ListQueries) // GET /ai/audit/queries
		})
	})

	return r
}
