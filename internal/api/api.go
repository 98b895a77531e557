// Package api provides the HTTP API for student records and text analysis.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/kamilpajak/wordfreq/internal/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultMaxUploadBytes bounds uploads when Config.MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 10 << 20

const defaultRootMessage = "Hello world"

// StudentStore defines the persistence operations needed by the student endpoints.
type StudentStore interface {
	CreateStudent(ctx context.Context, in database.StudentInput) (*database.Student, error)
	GetStudentByID(ctx context.Context, id uuid.UUID) (*database.Student, error)
	ListStudents(ctx context.Context, limit, offset int) ([]database.Student, error)
	CountStudents(ctx context.Context) (int, error)
	UpdateStudentField(ctx context.Context, id uuid.UUID, field, value string) (*database.Student, error)
	DeleteStudent(ctx context.Context, id uuid.UUID) (bool, error)
}

// Server is the API server.
type Server struct {
	store          StudentStore
	logger         zerolog.Logger
	metrics        *metrics
	registry       *prometheus.Registry
	limiter        *rate.Limiter
	maxUploadBytes int64
	rootMessage    string
	mux            *http.ServeMux
	handler        http.Handler
}

// Config holds API server configuration.
type Config struct {
	Store          StudentStore
	Logger         zerolog.Logger
	MaxUploadBytes int64
	RateLimit      float64 // requests per second, 0 disables limiting
	RateBurst      int
	RootMessage    string
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	registry := prometheus.NewRegistry()

	s := &Server{
		store:          cfg.Store,
		logger:         cfg.Logger,
		metrics:        newMetrics(registry),
		registry:       registry,
		maxUploadBytes: cfg.MaxUploadBytes,
		rootMessage:    cfg.RootMessage,
		mux:            http.NewServeMux(),
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = DefaultMaxUploadBytes
	}
	if s.rootMessage == "" {
		s.rootMessage = defaultRootMessage
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	s.registerRoutes()
	s.handler = s.logRequests(s.limitRate(s.countRequests(s.mux)))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.mux.HandleFunc("POST /analyze-text-file", s.handleAnalyzeTextFile)

	// Student routes need a store; without one the server only analyzes text.
	if s.store == nil {
		return
	}
	s.mux.HandleFunc("POST /api/student", s.handleCreateStudent)
	s.mux.HandleFunc("GET /api/student", s.handleListStudents)
	s.mux.HandleFunc("GET /api/student/{studentID}", s.handleGetStudent)
	s.mux.HandleFunc("DELETE /api/student/{studentID}", s.handleDeleteStudent)
	s.mux.HandleFunc("PUT /students/{studentID}/{field}/{value}", s.handleUpdateStudent)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.logger.Info().Msg("Healthcheck endpoint called")
	s.metrics.healthcheck.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"health": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.logger.Info().Msg("Main endpoint called")
	s.metrics.main.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": s.rootMessage})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
