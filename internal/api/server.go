// Package api is the HTTP surface of the service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/standgate/internal/audit"
	"github.com/dgallion1/standgate/internal/blob"
	"github.com/dgallion1/standgate/internal/config"
	"github.com/dgallion1/standgate/internal/decision"
	"github.com/dgallion1/standgate/internal/oracle"
	"github.com/dgallion1/standgate/internal/pipeline"
	"github.com/dgallion1/standgate/internal/resolve"
	"github.com/dgallion1/standgate/internal/store"
	"github.com/dgallion1/standgate/internal/validate"
)

// Server is the HTTP API server.
type Server struct {
	router       chi.Router
	store        *store.Store
	blobs        *blob.Store
	orchestrator *pipeline.Orchestrator
	resolver     *resolve.Resolver
	evaluator    *validate.Evaluator
	flow         *decision.Flow
	gemini       *oracle.Gemini
	oracleClient oracle.Client
	audit        *audit.Recorder
	log          *slog.Logger
	cfg          config.Config
}

// Deps carries the server's collaborators.
type Deps struct {
	Store        *store.Store
	Blobs        *blob.Store
	Orchestrator *pipeline.Orchestrator
	Resolver     *resolve.Resolver
	Evaluator    *validate.Evaluator
	Flow         *decision.Flow
	Gemini       *oracle.Gemini
	Oracle       oracle.Client
	Audit        *audit.Recorder
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:        deps.Store,
		blobs:        deps.Blobs,
		orchestrator: deps.Orchestrator,
		resolver:     deps.Resolver,
		evaluator:    deps.Evaluator,
		flow:         deps.Flow,
		gemini:       deps.Gemini,
		oracleClient: deps.Oracle,
		audit:        deps.Audit,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/folders", s.handleCreateFolder)
		r.Get("/api/folders", s.handleListFolders)
		r.Get("/api/folders/{folderID}", s.handleGetFolder)
		r.Delete("/api/folders/{folderID}", s.handleDeleteFolder)

		r.Post("/api/documents", s.handleUploadDocument)
		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Get("/api/documents/{docID}/content", s.handleDocumentContent)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Post("/api/standards", s.handleCreateStandard)
		r.Get("/api/standards", s.handleListStandards)
		r.Get("/api/standards/{standardID}", s.handleGetStandard)
		r.Delete("/api/standards/{standardID}", s.handleDeleteStandard)
		r.Post("/api/standards/{standardID}/versions", s.handleCreateVersion)
		r.Get("/api/standards/{standardID}/versions", s.handleListVersions)
		r.Post("/api/standards/extract", s.handleExtractStandard)

		r.Put("/api/assignments", s.handleAssignStandard)
		r.Delete("/api/assignments", s.handleUnassignStandard)
		r.Get("/api/assignments", s.handleListAssignments)
		r.Get("/api/resolve/{targetType}/{targetID}", s.handleResolve)

		r.Post("/api/documents/{docID}/validate", s.handleValidateDocument)
		r.Get("/api/documents/{docID}/validation", s.handleLatestValidation)
		r.Get("/api/documents/{docID}/validation/history", s.handleValidationHistory)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Post("/api/documents/{docID}/analyze", s.handleAnalyzeDocument)
		r.Post("/api/documents/{docID}/transform", s.handleTransformDocument)

		r.Get("/api/audit", s.handleListAudit)
		r.Get("/api/stats/oracle", s.handleOracleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
