package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the live-page HTTP/WebSocket server.
type Server struct {
	config   Config
	router   chi.Router
	upgrader websocket.Upgrader
	sessions *SessionManager
	logger   *zap.Logger

	// ctx is the parent of every session; cancel ends them.
	ctx    context.Context
	cancel context.CancelFunc

	httpServer *http.Server
}

// New creates a Server.
func New(cfg Config) *Server {
	cfg = cfg.withDefaults()
	logger := cfg.Logger.Named("server")
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:   cfg,
		sessions: NewSessionManager(logger),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/pages", s.handlePages)
	r.Get("/pages/{page}", s.handlePage)
	r.Get("/live/{page}", s.HandleLive)
	if s.config.Gatherer != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// logRequests logs every request except WebSocket upgrades, which are
// logged by their session.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager { return s.sessions }

func (s *Server) handlePages(w http.ResponseWriter, _ *http.Request) {
	names, err := listPages(s.config.Pages)
	if err != nil {
		s.logger.Error("list pages", zap.Error(err))
		http.Error(w, "cannot list pages", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(names)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	markup, err := readPage(s.config.Pages, chi.URLParam(r, "page"))
	if err != nil {
		s.pageError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(markup))
}

func (s *Server) pageError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrPageNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Error("read page", zap.Error(err))
	http.Error(w, "cannot read page", http.StatusInternalServerError)
}

// location builds the page URL from the ?path= query, defaulting to
// /{page}.
func (s *Server) location(r *http.Request, page string) (string, error) {
	p := r.URL.Query().Get("path")
	if p == "" {
		p = "/" + page
	}
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("path %q must be absolute", p)
	}
	u, err := url.Parse(strings.TrimSuffix(s.config.Origin, "/") + p)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// HandleLive upgrades the request and runs a live session for the page.
func (s *Server) HandleLive(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	markup, err := readPage(s.config.Pages, page)
	if err != nil {
		s.pageError(w, err)
		return
	}
	location, err := s.location(r, page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("upgrade failed", zap.Error(err))
		s.config.Sessions.WebSocketError(ErrKindUpgrade)
		return
	}

	session, err := newSession(uuid.NewString(), page, markup, location, conn, s.config)
	if err != nil {
		s.logger.Error("create session", zap.Error(err))
		_ = conn.WriteJSON(ServerMessage{Type: MsgError, Error: err.Error()})
		conn.Close()
		return
	}
	s.sessions.Add(session)
	session.Start(s.ctx)
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.config.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("address", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.cancel()
		s.sessions.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)

	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		<-errCh
		return err
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.sessions.Shutdown()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", zap.Error(err))
			return fmt.Errorf("server: shutdown: %w", err)
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
