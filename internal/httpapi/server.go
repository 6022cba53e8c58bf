// Package httpapi exposes the local authorization service: a small fixed set
// of operations served over the loopback interface so that other processes
// on the same machine can negotiate trust and read vault metadata without
// ever seeing the master passphrase.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/firevault/firevault/internal/auth"
	"github.com/firevault/firevault/internal/logging"
	"github.com/firevault/firevault/internal/vault"
	"github.com/go-chi/chi/v5"
)

// Server handles loopback requests from third-party local processes. The
// listen address must stay on the loopback interface; the service offers no
// authentication of its own beyond API keys and human-confirmed trust.
type Server struct {
	addr      string
	logger    logging.Logger
	authority *auth.Authority
	store     *vault.Store
	prompter  auth.Prompter
}

func NewServer(addr string, logger logging.Logger, authority *auth.Authority, store *vault.Store, prompter auth.Prompter) *Server {
	return &Server{
		addr:      addr,
		logger:    logger.With("module", "httpapi"),
		authority: authority,
		store:     store,
		prompter:  prompter,
	}
}

func (s *Server) router() http.Handler {
	mux := chi.NewRouter()
	mux.Use(s.recoverer)

	mux.Post("/trust", s.handleTrust)
	mux.Post("/login", s.handleLogin)
	mux.Get("/data", s.handleData)
	mux.Post("/validate-api-key", s.handleValidateAPIKey)

	return mux
}

// Run serves until ctx is cancelled, then shuts the listener down
// gracefully. Each accepted connection is handled on its own goroutine, so
// a slow key derivation or an unanswered human prompt never blocks the
// accept loop.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.router(),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: a trust negotiation legitimately blocks until
		// the human answers the prompt.
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping authorization service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "starting authorization service", "addr", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// recoverer converts a handler panic into a machine-readable failure instead
// of tearing the connection down abnormally.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error(r.Context(), "handler panic", "path", r.URL.Path, "panic", rec)
				s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), "response encode failed", "error", err.Error())
	}
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}
