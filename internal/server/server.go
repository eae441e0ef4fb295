// Package server exposes the HTTP API over the application core.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"chapterly/internal/app"
	"chapterly/internal/ratelimit"
	"chapterly/internal/reader"
	"chapterly/internal/util"
	"chapterly/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	// Optional per-endpoint limiters; nil disables limiting.
	LoginLimiter  *ratelimit.FixedWindowLimiter
	SignupLimiter *ratelimit.FixedWindowLimiter

	// TrustProxyHeaders enables X-Forwarded-For for rate-limit keys.
	TrustProxyHeaders bool
}

// Server exposes the HTTP endpoints.
type Server struct {
	app           *app.App
	mux           *http.ServeMux
	loginLimiter  *ratelimit.FixedWindowLimiter
	signupLimiter *ratelimit.FixedWindowLimiter
	trustProxy    bool
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:           cfg.App,
		mux:           http.NewServeMux(),
		loginLimiter:  cfg.LoginLimiter,
		signupLimiter: cfg.SignupLimiter,
		trustProxy:    cfg.TrustProxyHeaders,
	}
	s.routes()
	return s
}

// Router returns the configured handler with the standard middleware
// chain applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/auth/login", s.handleLogin)
	s.mux.HandleFunc("/auth/logout", s.handleLogout)
	s.mux.Handle("/auth/me", s.authenticated(s.handleMe))

	// catalog
	s.mux.Handle("/books", s.authenticated(s.handleBooks))
	s.mux.Handle("/books/", s.authenticated(s.handleBookByID))
	s.mux.Handle("/chapters/", s.authenticated(s.handleChapterByID))

	// reader sessions
	s.mux.Handle("/reader/sessions", s.authenticated(s.handleReaderSessions))
	s.mux.Handle("/reader/sessions/", s.authenticated(s.handleReaderSessionByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	user, ok, err := s.app.UserFromToken(token)
	if err != nil {
		slog.Warn("token lookup failed", "error", err)
		return domain.User{}, false
	}
	return user, ok
}

// auth handlers
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	if !s.signupLimiter.Allow(util.ClientIP(r, s.trustProxy)) {
		writeError(w, r, http.StatusTooManyRequests, "too many requests")
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.SignUp(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrEmailAlreadyExists) {
			writeError(w, r, http.StatusConflict, err.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	if !s.loginLimiter.Allow(util.ClientIP(r, s.trustProxy)) {
		writeError(w, r, http.StatusTooManyRequests, "too many requests")
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.app.Logout(token); err != nil {
		s.writeServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// catalog handlers
func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	books, err := s.app.ListBooks(r.URL.Query().Get("genre"))
	if err != nil {
		s.writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

// handleBookByID serves /books/{id}, /books/{id}/chapters, and
// /books/{id}/cover.
func (s *Server) handleBookByID(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	id, rest, ok := splitResourcePath(r.URL.Path, "/books/")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid book id")
		return
	}
	switch rest {
	case "":
		book, err := s.app.BookByID(id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
	case "chapters":
		chapters, err := s.app.BookChapters(id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"chapters": chapters})
	case "cover":
		url, err := s.app.CoverURL(r.Context(), id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	default:
		writeError(w, r, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleChapterByID(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	id, rest, ok := splitResourcePath(r.URL.Path, "/chapters/")
	if !ok || rest != "" {
		writeError(w, r, http.StatusBadRequest, "invalid chapter id")
		return
	}
	chapter, err := s.app.ChapterByID(id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chapter)
}

// reader handlers
func (s *Server) handleReaderSessions(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	var req openReaderRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.BookID) == "" {
		writeError(w, r, http.StatusBadRequest, "bookId required")
		return
	}
	id, view, err := s.app.OpenReader(r.Context(), req.BookID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, readerResponse{SessionID: id, View: view})
}

// handleReaderSessionByID serves /reader/sessions/{id} plus the
// navigation and preference subresources.
func (s *Server) handleReaderSessionByID(w http.ResponseWriter, r *http.Request, _ domain.User) {
	id, rest, ok := splitResourcePath(r.URL.Path, "/reader/sessions/")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid session id")
		return
	}
	sess, err := s.app.ReaderSession(id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	switch {
	case rest == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, readerResponse{SessionID: id, View: sess.Snapshot()})
	case rest == "" && r.Method == http.MethodDelete:
		if err := s.app.CloseReader(id); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case rest == "next" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, readerResponse{SessionID: id, View: sess.Next(r.Context())})
	case rest == "previous" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, readerResponse{SessionID: id, View: sess.Previous(r.Context())})
	case rest == "theme" && r.Method == http.MethodPut:
		var req themeRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}
		writeJSON(w, http.StatusOK, readerResponse{SessionID: id, View: sess.SetTheme(req.Theme)})
	case rest == "font-size" && r.Method == http.MethodPut:
		var req fontSizeRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}
		switch {
		case req.Action == "increase":
			writeJSON(w, http.StatusOK, readerResponse{SessionID: id, View: sess.IncreaseFontSize()})
		case req.Action == "decrease":
			writeJSON(w, http.StatusOK, readerResponse{SessionID: id, View: sess.DecreaseFontSize()})
		case req.Size > 0:
			writeJSON(w, http.StatusOK, readerResponse{SessionID: id, View: sess.SetFontSize(req.Size)})
		default:
			writeError(w, r, http.StatusBadRequest, "size or action required")
		}
	default:
		methodNotAllowed(w, r)
	}
}

// error mapping
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrBookNotFound),
		errors.Is(err, app.ErrChapterNotFound),
		errors.Is(err, app.ErrCoverNotFound),
		errors.Is(err, app.ErrReaderSessionNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		s.writeServerError(w, r, err)
	}
}

func (s *Server) writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	util.LoggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// splitResourcePath strips prefix from path and splits the remainder
// into a non-empty id plus at most one trailing segment.
func splitResourcePath(path, prefix string) (id, rest string, ok bool) {
	trimmed := strings.TrimPrefix(path, prefix)
	if trimmed == path || trimmed == "" {
		return "", "", false
	}
	parts := strings.SplitN(trimmed, "/", 2)
	id = strings.TrimSpace(parts[0])
	if id == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		rest = parts[1]
		if strings.Contains(rest, "/") {
			return "", "", false
		}
	}
	return id, rest, true
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type openReaderRequest struct {
	BookID string `json:"bookId"`
}

type readerResponse struct {
	SessionID string      `json:"sessionId"`
	View      reader.View `json:"view"`
}

type themeRequest struct {
	Theme reader.Theme `json:"theme"`
}

type fontSizeRequest struct {
	Size   int    `json:"size"`
	Action string `json:"action"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error":     msg,
		"requestId": util.RequestIDFromRequest(r),
	})
}
