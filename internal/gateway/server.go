// ABOUTME: HTTP endpoint serving token requests from remote resolvers
// ABOUTME: Handles the mk_token/get_token envelope and fails closed with empty responses

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/openexec/authgate/internal/auth"
	"github.com/openexec/authgate/internal/token"
	"github.com/openexec/authgate/internal/wire"
)

// Service issues and validates tokens. Both token.Manager and
// token.SignedManager satisfy it.
type Service interface {
	Issue(ctx context.Context, req auth.Request) (*token.Token, error)
	Lookup(ctx context.Context, id string) *token.Token
}

// Server exposes the token service to remote resolvers over HTTP.
type Server struct {
	svc        Service
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer creates a gateway server listening on addr.
func NewServer(addr string, svc Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:    svc,
		logger: logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/request", s.handleRequest)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
		// No write timeout: mk_token legitimately blocks for the
		// failure-normalization delay.
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("gateway stopped")
	return nil
}

// handleRequest decodes the envelope and dispatches on cmd. Authentication
// and lookup failures both answer an empty object: the response never says
// why there is no token.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	logger := s.logger.With("request_id", reqID)

	var req wire.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("undecodable request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request"})
		return
	}

	switch req.Cmd {
	case wire.CmdMkToken:
		s.handleMkToken(r.Context(), w, req, logger)
	case wire.CmdGetToken:
		s.handleGetToken(r.Context(), w, req, logger)
	default:
		logger.Warn("unknown command", "cmd", req.Cmd)
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown cmd"})
	}
}

func (s *Server) handleMkToken(ctx context.Context, w http.ResponseWriter, req wire.Request, logger *slog.Logger) {
	tok, err := s.svc.Issue(ctx, auth.Request{Backend: req.Eauth, Params: req.Params})
	if err != nil {
		// Storage fault: token not created. The caller still only sees
		// an empty response.
		logger.Error("token issuance failed", "backend", req.Eauth, "error", err)
	}
	if tok == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	logger.Info("token created", "backend", req.Eauth, "name", tok.Name)
	writeJSON(w, http.StatusOK, tokenResponse(tok))
}

func (s *Server) handleGetToken(ctx context.Context, w http.ResponseWriter, req wire.Request, logger *slog.Logger) {
	tok := s.svc.Lookup(ctx, req.Token)
	if tok == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse(tok))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// tokenResponse flattens a token into the wire mapping with Unix-second
// timestamps.
func tokenResponse(tok *token.Token) map[string]any {
	return map[string]any{
		wire.KeyToken:  tok.Token,
		wire.KeyName:   tok.Name,
		wire.KeyEauth:  tok.Backend,
		wire.KeyStart:  tok.IssuedAt.Unix(),
		wire.KeyExpire: tok.ExpiresAt.Unix(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
