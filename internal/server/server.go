// Package server provides the HTTP REST API for the job hunting
// assistant: workflow lifecycle, feedback collection, final resume
// generation, interview preparation, and export.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/jobhunt-assistant/internal/store"
	"github.com/jonathan/jobhunt-assistant/internal/workflow"
)

// Config holds server configuration.
type Config struct {
	Port        int
	DatabaseURL string
	ExportDir   string
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	registry   *workflow.Registry
	store      *store.Store
	validator  *validator.Validate
	exportDir  string
}

// New creates a server around the given stage clients. Persistence is
// optional: with no database URL, or an unreachable database, the
// server runs with in-memory workflows only.
func New(cfg Config, ag workflow.Agents) (*Server, error) {
	s := &Server{
		validator: validator.New(),
		exportDir: cfg.ExportDir,
	}
	if s.exportDir == "" {
		s.exportDir = "exports"
	}

	var opts []workflow.Option
	if cfg.DatabaseURL != "" {
		st, err := store.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Printf("database unavailable, continuing without persistence: %v", err)
		} else if err := st.EnsureSchema(context.Background()); err != nil {
			log.Printf("schema setup failed, continuing without persistence: %v", err)
			st.Close()
		} else {
			s.store = st
			opts = append(opts, workflow.WithRecorder(st))
		}
	}

	s.registry = workflow.NewRegistry(ag, opts...)

	// Workflow-scoped routes keep {id} in the same segment position so
	// literal and wildcard patterns never overlap under ServeMux rules.
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/workflow/start", s.handleStartWorkflow)
	mux.HandleFunc("GET /api/v1/workflow/{id}/progress", s.handleWorkflowProgress)
	mux.HandleFunc("GET /api/v1/workflow/{id}/progress/stream", s.handleWorkflowProgressStream)
	mux.HandleFunc("GET /api/v1/workflow/{id}/result", s.handleWorkflowResult)
	mux.HandleFunc("GET /api/v1/workflow/{id}/recommendations", s.handleRecommendations)

	mux.HandleFunc("POST /api/v1/workflow/{id}/feedback", s.handleFeedback)
	mux.HandleFunc("POST /api/v1/workflow/{id}/feedback/batch", s.handleFeedbackBatch)
	mux.HandleFunc("GET /api/v1/workflow/{id}/feedback/status", s.handleFeedbackStatus)

	mux.HandleFunc("POST /api/v1/workflow/{id}/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/v1/workflow/{id}/projects/classified", s.handleClassifiedProjects)
	mux.HandleFunc("POST /api/v1/workflow/{id}/interview/prepare", s.handleInterviewPrepare)
	mux.HandleFunc("GET /api/v1/workflow/{id}/interview/result", s.handleInterviewResult)
	mux.HandleFunc("POST /api/v1/workflow/{id}/export", s.handleExport)

	mux.HandleFunc("GET /api/v1/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // stage calls can take minutes
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.store != nil {
		s.store.Close()
	}
	log.Println("Server stopped")
	return nil
}

// Handler exposes the configured routes, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"persisted": s.store != nil,
	})
}

// handleListRuns lists persisted runs; without a database it reports
// the feature unavailable rather than failing.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}

	runs, err := s.store.ListRuns(r.Context(), 50)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// lookupWorkflow resolves the {id} path value, writing a 404 on miss.
func (s *Server) lookupWorkflow(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, bool) {
	id := r.PathValue("id")
	wf, ok := s.registry.Get(id)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("workflow not found: %s", id))
		return nil, false
	}
	return wf, true
}

func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
