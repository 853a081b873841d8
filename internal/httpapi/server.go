// ABOUTME: HTTP server wiring for the chat API
// ABOUTME: Builds the route mux, applies auth middleware, and manages lifecycle

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rajputkuldeep/chat-application/internal/auth"
	"github.com/rajputkuldeep/chat-application/internal/chat"
	"github.com/rajputkuldeep/chat-application/internal/store"
)

// Envelope status strings returned in every response body.
const (
	statusSuccess      = "Success"
	statusFailure      = "Failure"
	statusUnauthorized = "Unauthorized"
)

// Server owns the HTTP surface of the chat service.
type Server struct {
	svc      *chat.Service
	store    store.Store
	verifier auth.TokenVerifier
	validate *validator.Validate
	logger   *slog.Logger

	httpServer *http.Server
}

// NewServer creates the HTTP API server listening on addr.
func NewServer(addr string, svc *chat.Service, st store.Store, verifier auth.TokenVerifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		svc:      svc,
		store:    st,
		verifier: verifier,
		validate: validator.New(),
		logger:   logger.With("component", "httpapi"),
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Routes builds the full route mux. Everything under /messages and /ws sits
// behind the auth middleware; /health stays open for probes.
func (s *Server) Routes() http.Handler {
	authed := http.NewServeMux()
	authed.HandleFunc("GET /messages/global", s.handleGlobalHistory)
	authed.HandleFunc("POST /messages/global", s.handleSendGlobal)
	authed.HandleFunc("GET /messages/pagination", s.handlePagination)
	authed.HandleFunc("GET /messages/last_data", s.handleLastData)
	authed.HandleFunc("GET /messages/date", s.handleDate)
	authed.HandleFunc("GET /messages/conversations", s.handleConversations)
	authed.HandleFunc("GET /messages/conversations/query", s.handleConversationQuery)
	authed.HandleFunc("POST /messages/{$}", s.handleSendPrivate)
	authed.HandleFunc("GET /ws", s.handleWebsocket)

	middleware := auth.HTTPAuthMiddleware(s.store, s.verifier)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/messages/", middleware(authed))
	mux.Handle("/ws", middleware(authed))

	return mux
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP API listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles GET /health. Unauthenticated liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// writeJSON writes an arbitrary JSON response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeSuccess writes the success envelope with extra payload fields.
func (s *Server) writeSuccess(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"message": statusSuccess}
	for k, v := range payload {
		body[k] = v
	}
	s.writeJSON(w, status, body)
}

// writeFailure writes the failure envelope with an error description.
func (s *Server) writeFailure(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]any{
		"message": statusFailure,
		"error":   detail,
	})
}
