package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"alarmboard/internal/board"
	"alarmboard/internal/config"
	"alarmboard/internal/export"
	appLog "alarmboard/internal/log"
	"alarmboard/internal/refresh"
)

// Server serves the dashboard page and its JSON/iCalendar APIs.
type Server struct {
	cfg   *config.Config
	board *board.Board
	clock refresh.Clock
	mux   *http.ServeMux
}

// embeddedStatic holds the dashboard page; it polls /api/alarms every tick.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server. clock decides "now" for every request
// that does not pass an explicit ?at=.
func NewServer(cfg *config.Config, b *board.Board, clock refresh.Clock) *Server {
	s := &Server{
		cfg:   cfg,
		board: b,
		clock: clock,
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="alarmboard", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve listens on s.cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/alarms", s.handleAlarms)
	s.mux.HandleFunc("/api/schedule", s.handleSchedule)
	s.mux.HandleFunc("/api/alarms.ics", s.handleICS)
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// staticFileServer serves the embedded dashboard page. /api/* never falls
// through to HTML.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

// now returns the reference instant for a request: ?at=<RFC3339> when
// given, otherwise the server clock, both in the configured zone.
func (s *Server) now(r *http.Request) (time.Time, error) {
	loc := s.cfg.Location()
	if at := r.URL.Query().Get("at"); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(loc), nil
	}
	return s.clock.Now().In(loc), nil
}

func (s *Server) handleAlarms(w http.ResponseWriter, r *http.Request) {
	now, err := s.now(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid at parameter; want RFC3339")
		return
	}
	snap := s.board.Snapshot(r.Context(), now)
	writeJSON(w, http.StatusOK, newAlarmsResponse(snap, s.cfg.TickInterval()))
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	store := s.board.Store()
	// Failures are logged by Reload; the response reports loaded=false.
	_ = store.EnsureLoaded(r.Context())
	writeJSON(w, http.StatusOK, newScheduleResponse(store.Schedules(), store.Loaded(), store.LoadedAt()))
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	store := s.board.Store()
	// Failures are logged by Reload; an empty calendar is still valid.
	_ = store.EnsureLoaded(r.Context())

	body := export.Serialize(store.Schedules(), export.Options{
		Name:     "Alarms",
		Location: s.cfg.Location(),
	})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="alarms.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
