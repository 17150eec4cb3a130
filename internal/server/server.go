package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/models"
	"github.com/claude/wodgen/internal/pipeline"
)

// WorkoutService runs one workout generation.
type WorkoutService interface {
	Run(ctx context.Context, p generator.Params) (*models.Workout, error)
}

// GenerationLog lists recent generation records.
type GenerationLog interface {
	QueryGenerations(ctx context.Context, limit int) ([]models.GenerationRecord, error)
	OutcomeCounts(ctx context.Context, days int) (map[string]int, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	workouts WorkoutService
	logs     GenerationLog
	log      *slog.Logger
	apiKey   string
	whois    WhoIser
	router   chi.Router
}

// New creates a new Server with all routes configured. logs may be nil when
// no database is configured; apiKey may be empty to disable key checks.
func New(workouts WorkoutService, logs GenerationLog, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		workouts: workouts,
		logs:     logs,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/schema", s.handleSchema)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/generations", s.handleGenerations)
	s.router.Get("/api/v1/generations/stats", s.handleGenerationStats)

	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/workout", s.handleWorkout)
	})
}

// SetTailscale enables Tailscale identity lookup for incoming requests.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
}

// SetMCP mounts an MCP streamable HTTP handler at /mcp behind the same API
// key check as /workout. Tool calls are recorded under the request's caller.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := pipeline.WithCaller(r.Context(), userInfoFromContext(r).Login)
		h.ServeHTTP(w, r.WithContext(ctx))
	}))
}
