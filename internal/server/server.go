package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/michaelbrown/codepad/internal/logging"
	"github.com/michaelbrown/codepad/internal/sandbox"
	"github.com/michaelbrown/codepad/internal/storage"
	"github.com/michaelbrown/codepad/internal/workspace"
)

// CodeRunner executes code for the execution service.
type CodeRunner interface {
	Run(ctx context.Context, lang, code string) (sandbox.Outcome, error)
	Available() bool
}

// Server is the HTTP server for the codepad API. It serves both the
// execution service and the workspace surface.
type Server struct {
	store  storage.Store
	ws     *workspace.Workspace
	runner CodeRunner
	logger *slog.Logger
	router chi.Router
	http   *http.Server
}

// New creates a new Server. A nil runner makes the execution service answer
// 503; a nil store disables execution history.
func New(ws *workspace.Workspace, store storage.Store, runner CodeRunner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		store:  store,
		ws:     ws,
		runner: runner,
		logger: logger,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(allowAnyOrigin)

	r.Route("/api", func(r chi.Router) {
		// WebSocket (no JSON content-type)
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(jsonContentType)

			// Execution service
			r.Post("/execute", s.handleExecute)
			r.Get("/executions", s.handleListExecutions)

			// Workspace
			r.Get("/files", s.handleListFiles)
			r.Post("/files", s.handleCreateFile)
			r.Get("/files/{name}", s.handleGetFile)
			r.Put("/files/{name}", s.handleUpdateFile)
			r.Delete("/files/{name}", s.handleDeleteFile)
			r.Post("/files/{name}/select", s.handleSelectFile)
			r.Get("/current", s.handleCurrentFile)
			r.Post("/run", s.handleRun)
			r.Get("/output", s.handleOutput)
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
		})
	})
}

// jsonContentType sets Content-Type to application/json for API routes.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// allowAnyOrigin lets a browser editor served elsewhere call the API.
func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Start begins listening on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.logger.Info("codepad server starting", "url", "http://localhost"+addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if s.http == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
