package server

import (
	"database/sql"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/quests/internal/handler"
	"github.com/dukerupert/quests/internal/middleware"
	"github.com/dukerupert/quests/internal/store"
	ws "github.com/dukerupert/quests/internal/websocket"
)

//go:embed static
var staticFS embed.FS

// Options tune the HTTP surface.
type Options struct {
	// Secret keys the anti-forgery tokens.
	Secret       string
	SecureCookie bool
	// WriteLimit is the per-IP number of state-changing requests allowed
	// per minute. Zero disables the limit.
	WriteLimit int
	Health     handler.HealthChecker
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	questH      *handler.QuestHandler
	healthH     *handler.HealthHandler
	csrf        *middleware.CSRF
	rateLimiter *middleware.RateLimiter
	writeLimit  int
	logger      *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) (*Server, error) {
	csrf, err := middleware.NewCSRF(opts.Secret, opts.SecureCookie)
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub(logger.With("component", "websocket"))
	questStore := store.NewQuestStore(db)

	return &Server{
		db:          db,
		hub:         hub,
		questH:      handler.NewQuestHandler(questStore, hub, logger.With("component", "quest")),
		healthH:     handler.NewHealthHandler(opts.Health, logger.With("component", "health")),
		csrf:        csrf,
		rateLimiter: middleware.NewRateLimiter(),
		writeLimit:  opts.WriteLimit,
		logger:      logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the change feed hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /health", s.healthH.Health)
	mux.HandleFunc("GET /up", s.healthH.Up)

	// Quest pages and API
	mux.HandleFunc("GET /{$}", s.questH.Index)
	mux.HandleFunc("GET /quests", s.questH.Index)
	mux.HandleFunc("POST /quests", s.questH.Create)
	mux.HandleFunc("GET /quests/{id}", s.questH.Show)
	mux.HandleFunc("PATCH /quests/{id}", s.questH.Update)
	mux.HandleFunc("PUT /quests/{id}", s.questH.Update)
	mux.HandleFunc("DELETE /quests/{id}", s.questH.Delete)
	mux.HandleFunc("GET /fun", s.questH.Fun)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub))

	var h http.Handler = mux
	h = middleware.LimitWrites(s.rateLimiter, s.writeLimit, time.Minute)(h)
	h = s.csrf.Middleware(h)
	h = middleware.MethodOverride(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}
