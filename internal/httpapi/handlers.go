package httpapi

import (
	"net/http"
)

// handleTrust negotiates a trust grant for an external application. An
// already-trusted app id is confirmed without re-prompting; otherwise the
// human decides. When nobody is logged in, the prompting surface is first
// asked to complete a login.
func (s *Server) handleTrust(w http.ResponseWriter, r *http.Request) {
	var req trustRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	s.logger.Info(ctx, "trust negotiation", "app_id", req.AppID, "app_name", req.AppName)

	current := s.authority.CurrentAccount()
	if current == nil {
		if !s.prompter.PromptLogin(ctx) {
			s.writeJSON(w, http.StatusOK, trustResponse{Trusted: false})
			return
		}
		if current = s.authority.CurrentAccount(); current == nil {
			s.writeJSON(w, http.StatusOK, trustResponse{Trusted: false})
			return
		}
	}

	if current.IsTrusted(req.AppID) {
		s.writeJSON(w, http.StatusOK, trustResponse{Trusted: true})
		return
	}

	trusted := s.prompter.PromptTrust(ctx, req.AppID, req.AppName)
	if trusted {
		trusted = s.authority.TrustApp(ctx, req.AppID, req.AppName)
	}

	s.writeJSON(w, http.StatusOK, trustResponse{Trusted: trusted})
}

// handleLogin performs an external login with an API key, username and
// password triple. On success the user's vault database is initialized so
// subsequent data fetches see a live store.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	success := s.authority.LoginExternal(ctx, req.APIKey, req.Username, req.Password)
	if success {
		if err := s.store.InitializeForUser(ctx, req.Username); err != nil {
			s.logger.Error(ctx, "vault init after login failed", "error", err.Error())
		}
	}

	s.writeJSON(w, http.StatusOK, loginResponse{Success: success})
}

// handleData returns the requesting account's vault-record metadata. The
// payloads stay encrypted at rest and are never part of the response.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := s.authority.ValidateAPIKey(ctx, r.Header.Get(HeaderAPIKey))
	if err != nil {
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	records := s.store.List(ctx, account.Username)
	out := make([]recordMetadata, 0, len(records))
	for _, rec := range records {
		out = append(out, recordMetadata{
			ID:        rec.ID,
			Title:     rec.Title,
			Type:      rec.Type,
			CreatedAt: rec.CreatedAt,
		})
	}

	s.writeJSON(w, http.StatusOK, out)
}

// handleValidateAPIKey lets callers self-check a key before attempting other
// operations. It has no side effects.
func (s *Server) handleValidateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req validateAPIKeyRequest
	if !s.readJSON(w, r, &req) {
		return
	}

	_, err := s.authority.ValidateAPIKey(r.Context(), req.APIKey)
	s.writeJSON(w, http.StatusOK, validateAPIKeyResponse{IsValid: err == nil})
}
