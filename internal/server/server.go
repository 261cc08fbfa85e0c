package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"booker/internal/app"
	"booker/internal/session"
	"booker/internal/util"
	"booker/pkg/domain"
)

const maxBodyBytes = 1 << 20

// Config wires the HTTP layer's collaborators.
type Config struct {
	App              *app.App
	Sessions         *session.Manager
	CORSOrigin       string
	TrustedProxies   *util.TrustedProxies
	SearchMaxResults int
}

// Server is the HTTP front for the application.
type Server struct {
	app              *app.App
	sessions         *session.Manager
	corsOrigin       string
	trusted          *util.TrustedProxies
	searchMaxResults int
	mux              *http.ServeMux
}

// New constructs the server and registers its routes.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server: app is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("server: session manager is required")
	}
	s := &Server{
		app:              cfg.App,
		sessions:         cfg.Sessions,
		corsOrigin:       cfg.CORSOrigin,
		trusted:          cfg.TrustedProxies,
		searchMaxResults: cfg.SearchMaxResults,
		mux:              http.NewServeMux(),
	}
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/auth/", s.handleAuth)
	s.mux.HandleFunc("/api/book", s.withSession(s.handleBook))
	s.mux.HandleFunc("/api/book/", s.handleBookPage)
	s.mux.HandleFunc("/api/favorites", s.withSession(s.handleFavorites))
	s.mux.HandleFunc("/api/search", s.withSession(s.handleSearch))
	return s, nil
}

// Router returns the mux wrapped in the shared middleware chain.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.WithRequestLog(h)
	h = util.WithRequestID(h)
	h = util.WithCORS(s.corsOrigin, h)
	h = util.WithSecurityHeaders(h)
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAuth dispatches /api/auth/{action}. Every action is POST-only and
// anything else is an unknown route, not a method error.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/auth/")
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	switch action {
	case "login":
		s.handleLogin(w, r)
	case "signup":
		s.handleSignup(w, r)
	case "logout":
		s.handleLogout(w, r)
	default:
		http.NotFound(w, r)
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, err := s.app.Login(req.Username, req.Password)
	if err != nil {
		s.audit(r, "login", "denied")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.sessions.Establish(w, account); err != nil {
		s.logError(r, "establish session", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.audit(r, "login", "success")
	writeJSON(w, http.StatusOK, map[string]string{
		"id":       account.ID,
		"username": account.Username,
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, err := s.app.SignUp(req.Username, req.Password)
	if err != nil {
		s.audit(r, "signup", "denied")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.sessions.Establish(w, account); err != nil {
		s.logError(r, "establish session", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.audit(r, "signup", "success")
	http.Redirect(w, r, "/search", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Terminate(w, r); err != nil {
		s.logError(r, "terminate session", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.audit(r, "logout", "success")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withSession rejects requests without a valid session before the wrapped
// handler runs.
func (s *Server) withSession(next func(http.ResponseWriter, *http.Request, session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.Get(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next(w, r, sess)
	}
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request, sess session.Session) {
	switch r.Method {
	case http.MethodPost:
		s.handleAddFavorite(w, r, sess)
	case http.MethodDelete:
		s.handleRemoveFavorite(w, r, sess)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request, sess session.Session) {
	var book domain.SearchResultBook
	if err := decodeBody(r, &book); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	record, err := s.app.AddFavorite(sess.UserID, book)
	if err != nil {
		if errors.Is(err, app.ErrStaleOwner) {
			s.staleSession(w, r, "add_favorite")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.audit(r, "add_favorite", "success")
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request, sess session.Session) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.app.RemoveFavorite(sess.UserID, req.ID); err != nil {
		if errors.Is(err, app.ErrStaleOwner) {
			s.staleSession(w, r, "remove_favorite")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.audit(r, "remove_favorite", "success")
	w.WriteHeader(http.StatusOK)
}

// handleBookPage serves GET /api/book/{googleId}. The session is optional;
// an anonymous request still resolves against the public catalog.
func (s *Server) handleBookPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	googleID := strings.TrimPrefix(r.URL.Path, "/api/book/")
	if googleID == "" || strings.Contains(googleID, "/") {
		http.NotFound(w, r)
		return
	}

	var ownerID string
	if sess, ok := s.sessions.Get(r); ok {
		ownerID = sess.UserID
	}

	page, err := s.app.ResolveBookPage(ownerID, googleID)
	switch {
	case errors.Is(err, app.ErrNoContent):
		http.NotFound(w, r)
	case errors.Is(err, app.ErrCatalogUnavailable):
		s.logError(r, "resolve book page", err)
		writeError(w, http.StatusBadGateway, "catalog unavailable")
	case err != nil:
		s.logError(r, "resolve book page", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, page)
	}
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records, err := s.app.ListFavorites(sess.UserID)
	if err != nil {
		s.logError(r, "list favorites", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": records, "count": len(records)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, sess session.Session) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	books, err := s.app.SearchBooks(query, s.searchMaxResults)
	if err != nil {
		s.logError(r, "search catalog", err)
		writeError(w, http.StatusBadGateway, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": books, "count": len(books)})
}

// staleSession handles a store refusal: the session no longer maps to a live
// account, so it is destroyed before the bare 401 goes out.
func (s *Server) staleSession(w http.ResponseWriter, r *http.Request, event string) {
	if err := s.sessions.Terminate(w, r); err != nil {
		s.logError(r, "terminate stale session", err)
	}
	s.audit(r, event, "stale_session")
	w.WriteHeader(http.StatusUnauthorized)
}

func (s *Server) audit(r *http.Request, event, outcome string) {
	util.LoggerFromContext(r.Context()).Info("security_event",
		"event", event,
		"outcome", outcome,
		"ip", util.ClientIP(r, s.trusted),
		"request_id", util.RequestIDFromRequest(r),
	)
}

func (s *Server) logError(r *http.Request, msg string, err error) {
	util.LoggerFromContext(r.Context()).Error(msg,
		"error", err,
		"request_id", util.RequestIDFromRequest(r),
	)
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
