package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lazypower/recognition/internal/engine"
	"github.com/lazypower/recognition/internal/graph"
	"github.com/lazypower/recognition/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	Version          string
	CORSOrigins      []string
	InteractionRPS   float64
	InteractionBurst int
	Logger           *zap.Logger
}

// Server is the recognition HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	router  chi.Router
	version string
	started time.Time
	log     *zap.Logger
	sse     *Broadcaster
	limiter *rate.Limiter
	origins []string
}

// New creates a Server over db and eng and subscribes the frame stream to
// eng's frames.
func New(db *store.DB, eng *engine.Engine, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.InteractionRPS <= 0 {
		opts.InteractionRPS = 120
	}
	if opts.InteractionBurst <= 0 {
		opts.InteractionBurst = 2 * int(opts.InteractionRPS)
	}

	s := &Server{
		db:      db,
		engine:  eng,
		version: opts.Version,
		started: time.Now(),
		log:     opts.Logger,
		sse:     NewBroadcaster(opts.Logger.Named("sse"), eng.Metrics().Subscribers),
		limiter: rate.NewLimiter(rate.Limit(opts.InteractionRPS), opts.InteractionBurst),
		origins: opts.CORSOrigins,
	}
	eng.OnFrame(func(f engine.Frame) {
		s.sse.Broadcast(Event{Name: "frame", Data: f})
	})
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Broadcaster returns the frame stream fan-out.
func (s *Server) Broadcaster() *Broadcaster { return s.sse }

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/graph", s.handleGraph)
		r.Post("/nodes", s.handleAddNode)
		r.Get("/nodes/{id}", s.handleGetNode)
		r.Post("/reset", s.handleReset)
		r.Get("/frame", s.handleFrame)
		r.Post("/interactions", s.withRateLimit(s.handleInteraction))
		r.Get("/events", s.handleEvents)
		r.Get("/history", s.handleHistory)
	})
	r.Handle("/metrics", s.engine.Metrics().Handler())

	r.NotFound(spaHandler())

	s.router = r
}

// observe records request counts and latencies by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.engine.Metrics().ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}

// withRateLimit wraps a handler with a token-bucket limiter shared by all
// clients. Returns 429 when the bucket is empty.
func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "rate limit exceeded", "retry_after_ms": 1000})
			s.log.Warn("rate limit exceeded", zap.String("path", r.URL.Path), zap.String("remote_addr", r.RemoteAddr))
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
		"clients": s.sse.ClientCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error kind to a status code. Input and validation
// errors carry their per-field messages.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case graph.IsInput(err), graph.IsValidation(err):
		status = http.StatusBadRequest
	case graph.IsNotFound(err):
		status = http.StatusNotFound
	case graph.IsStorage(err):
		status = http.StatusServiceUnavailable
	}
	body := map[string]any{"error": err.Error()}
	if fields := graph.FieldErrors(err); len(fields) > 0 {
		body["fields"] = fields
	}
	writeJSON(w, status, body)
}

// Close disconnects stream clients so their handlers return before the
// HTTP server shuts down.
func (s *Server) Close() {
	s.sse.Close()
}
