package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"minical/internal/config"
	"minical/internal/ics"
	appLog "minical/internal/log"
	"minical/internal/model"
	"minical/internal/service"
	"minical/internal/store"
	"minical/internal/validate"
)

const (
	allowedMethods = "GET,POST,PUT,DELETE,OPTIONS"
	allowedHeaders = "Content-Type, Authorization"
)

// MalformedRequestError reports a body that cannot be turned into a payload.
type MalformedRequestError struct {
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return e.Reason
}

// Server serves the calendar JSON API, the HTML month page and the ICS feed.
type Server struct {
	cfg  *config.Config
	svc  *service.Service
	mux  *http.ServeMux
	md   goldmark.Markdown
	page *template.Template
	mcp  http.Handler
}

type Option func(*Server)

// WithMCP mounts an MCP endpoint at /mcp.
func WithMCP(h http.Handler) Option {
	return func(s *Server) { s.mcp = h }
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, svc *service.Service, opts ...Option) *Server {
	s := &Server{
		cfg:  cfg,
		svc:  svc,
		mux:  http.NewServeMux(),
		md:   goldmark.New(),
		page: monthPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

// Handler returns the full middleware chain: CORS, request logging, then
// optional basic auth in front of the routes.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.cfg.BasicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}
	return s.corsMiddleware(logRequests(h))
}

// StartServer serves until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, svc *service.Service, opts ...Option) error {
	s := NewServer(cfg, svc, opts...)
	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(appLog.Slog().Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "data_file", cfg.DataFile)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/categories", s.handleListCategories)
	s.mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("GET /api/events.ics", s.handleICS)
	s.mux.HandleFunc("GET /api/month", s.handleMonth)
	s.mux.HandleFunc("GET /api/palette", s.handlePalette)
	s.mux.HandleFunc("/api/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	s.mux.HandleFunc("GET /calendar", s.handleCalendarPage)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})

	if s.mcp != nil {
		s.mux.Handle("/mcp", s.mcp)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	cats, err := s.svc.ListCategories()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p, err := s.decodePayload(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	c, err := s.svc.CreateCategory(p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	events, err := s.svc.ListEvents()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	p, err := s.decodePayload(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	e, err := s.svc.CreateEvent(p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	p, err := s.decodePayload(w, r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	e, err := s.svc.UpdateEvent(r.PathValue("id"), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	removed, err := s.svc.DeleteEvent(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	events, err := s.svc.ListEvents()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	body := ics.Export(events, time.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="minical.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// handleMonth returns the 42-cell grid for ?year=&month=, defaulting to the
// current month.
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	m, err := s.monthFromQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	view, err := s.svc.Month(m)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePalette(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, paletteResponse())
}

func (s *Server) monthFromQuery(r *http.Request) (model.Month, error) {
	m := model.MonthOf(s.svc.Today())
	q := r.URL.Query()

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 || year > 9999 {
			return model.Month{}, &validate.ValidationError{Reason: "Invalid year"}
		}
		m.Year = year
	}
	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return model.Month{}, &validate.ValidationError{Reason: "Invalid month"}
		}
		m.Month = time.Month(month)
	}
	return m, nil
}

// decodePayload reads a JSON object body. An empty body is an empty object
// and a JSON null yields a nil payload for the validators to reject.
func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request) (validate.Payload, error) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &MalformedRequestError{Reason: "Payload too large"}
		}
		return nil, &MalformedRequestError{Reason: "Invalid request body"}
	}
	if strings.TrimSpace(string(data)) == "" {
		return validate.Payload{}, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &MalformedRequestError{Reason: "Invalid JSON body"}
	}
	switch obj := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return validate.Payload(obj), nil
	default:
		return nil, &MalformedRequestError{Reason: "Request body must be a JSON object"}
	}
}

// corsMiddleware adds CORS headers to every response and answers
// preflight requests directly.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		h.Set("Access-Control-Allow-Headers", allowedHeaders)
		h.Set("Access-Control-Allow-Methods", allowedMethods)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
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
			w.Header().Set("WWW-Authenticate", `Basic realm="minical", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
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

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		invalid   *validate.ValidationError
		notFound  *service.NotFoundError
		malformed *MalformedRequestError
		persist   *store.PersistenceError
	)
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Reason)
	case errors.As(err, &malformed):
		writeError(w, http.StatusBadRequest, malformed.Reason)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &persist):
		appLog.Error("persistence failure", err, "op", persist.Op, "path", persist.Path)
		writeError(w, http.StatusInternalServerError, persist.Error())
	default:
		appLog.Error("request failed", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
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
