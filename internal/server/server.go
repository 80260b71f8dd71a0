package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"

	"shoutdesk/internal/config"
	"shoutdesk/internal/intake"
	"shoutdesk/internal/logging"
	"shoutdesk/internal/pubsub"
	"shoutdesk/internal/store"
)

// TopicSuggester produces a single shoutout topic suggestion. Satisfied by
// the llm client; tests substitute a stub.
type TopicSuggester interface {
	SuggestTopic(ctx context.Context) (string, error)
}

// Options carries the dependencies the server needs. Every field except
// Suggester and Logger is required.
type Options struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *store.Store
	Hub       *pubsub.Hub
	Intake    *intake.Intake
	Suggester TopicSuggester
}

// Server is the review dashboard's HTTP surface: auth, submission CRUD,
// uploads, the zip export, and the websocket change feed.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	hub       *pubsub.Hub
	intake    *intake.Intake
	suggester TopicSuggester
	sessions  *sessions.FilesystemStore
	validate  *validator.Validate
	router    chi.Router

	listener net.Listener
	server   *http.Server
}

// New wires the router and session store. The config must already be
// validated and its directories created.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Hub == nil {
		return nil, errors.New("server: hub is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	sessionStore := sessions.NewFilesystemStore(opts.Config.Paths.SessionsDir, []byte(opts.Config.Sessions.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.Config.Sessions.TTLMinutes * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		cfg:       opts.Config,
		logger:    logging.WithComponent(logger, "server"),
		store:     opts.Store,
		hub:       opts.Hub,
		intake:    opts.Intake,
		suggester: opts.Suggester,
		sessions:  sessionStore,
		validate:  validator.New(),
	}
	s.router = s.routes()
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/logout", s.handleLogout)
	r.Post("/upload", s.handleUpload)
	r.Get("/suggest-topic", s.handleSuggestTopic)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/api/users", s.handleListUsers)
		r.Get("/api/submissions", s.handleListSubmissions)
		r.Post("/api/submission/status", s.handleSubmissionStatus)
		r.Post("/api/submission/delete", s.handleSubmissionDelete)
		r.Post("/api/submissions/assign-bulk", s.handleAssignBulk)
		r.Post("/api/download-approved", s.handleDownloadApproved)
		r.Get("/ws", s.handleWebSocket)
	})
	return r
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.Bind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("server listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, giving in-flight requests a short grace period.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("duration", time.Since(start)),
		)
	})
}
