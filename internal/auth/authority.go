// Package auth implements the session/trust authority: it authenticates
// internal and external logins, owns the process-wide current account,
// maintains per-account trusted-app lists and rotates API keys.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/firevault/firevault/internal/accounts"
	"github.com/firevault/firevault/internal/common"
	"github.com/firevault/firevault/internal/cryptox"
	"github.com/firevault/firevault/internal/logging"
	"github.com/firevault/firevault/internal/models"
)

// SessionDuration is how long an externally opened session stays valid.
const SessionDuration = 31 * 24 * time.Hour

// Authority transitions the process between LoggedOut and LoggedIn(account).
// There is no logout operation: the current account lives until process exit
// or until another login overwrites it.
//
// The mutex guards the current-account reference together with the composite
// read-modify-write sequences against the account store, so a reader can
// never observe a half-updated login.
type Authority struct {
	repo   accounts.Repository
	logger logging.Logger

	mu      sync.Mutex
	current *models.Account
	now     func() time.Time
}

func NewAuthority(repo accounts.Repository, logger logging.Logger) *Authority {
	return &Authority{
		repo:   repo,
		logger: logger.With("module", "auth"),
		now:    time.Now,
	}
}

// LoginInternal authenticates a local user by password. It returns false on
// any mismatch and never distinguishes an unknown username from a wrong
// password to the caller.
func (a *Authority) LoginInternal(ctx context.Context, username, password string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	account, err := a.repo.FindByUsername(ctx, username)
	if err != nil {
		a.logger.Warn(ctx, "internal login failed", "username", username)
		return false
	}

	if !a.checkPassword(account, password) {
		a.logger.Warn(ctx, "internal login failed", "username", username)
		return false
	}

	a.current = account
	a.logger.Info(ctx, "internal login", "username", username)
	return true
}

// LoginExternal authenticates an API-key-bearing caller. The key must belong
// to the named account and the password must match; on success a session is
// opened for SessionDuration and the account becomes current.
func (a *Authority) LoginExternal(ctx context.Context, apiKey, username, password string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	account, err := a.repo.FindByAPIKey(ctx, apiKey)
	if err != nil || account.Username != username {
		a.logger.Warn(ctx, "external login failed", "username", username)
		return false
	}

	if !a.checkPassword(account, password) {
		a.logger.Warn(ctx, "external login failed", "username", username)
		return false
	}

	expiry := a.now().UTC().Add(SessionDuration)
	account.SessionExpiration = &expiry
	if err := a.repo.Persist(ctx, account); err != nil {
		a.logger.Error(ctx, "session persist failed", "error", err.Error())
		return false
	}

	a.current = account
	a.logger.Info(ctx, "external login", "username", username)
	return true
}

// ValidateAPIKey resolves an API key to its account with no side effects.
// An unknown or empty key yields common.ErrNotFound.
func (a *Authority) ValidateAPIKey(ctx context.Context, apiKey string) (*models.Account, error) {
	return a.repo.FindByAPIKey(ctx, apiKey)
}

// ValidateSession reports whether the key resolves to an account with an
// unexpired session, making that account current on success.
func (a *Authority) ValidateSession(ctx context.Context, apiKey string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	account, err := a.repo.FindByAPIKey(ctx, apiKey)
	if err != nil {
		return false
	}

	if account.SessionExpiration == nil || !account.SessionExpiration.After(a.now().UTC()) {
		return false
	}

	a.current = account
	return true
}

// TrustApp idempotently adds appID to the current account's trusted set and
// persists the change. It returns false when no account is logged in, the
// id is empty, or persistence fails.
func (a *Authority) TrustApp(ctx context.Context, appID, appName string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil || strings.TrimSpace(appID) == "" {
		return false
	}

	a.current.TrustApp(appID)
	if err := a.repo.Persist(ctx, a.current); err != nil {
		a.logger.Error(ctx, "trust persist failed", "error", err.Error())
		return false
	}

	a.logger.Info(ctx, "app trusted", "app_id", appID, "app_name", appName)
	return true
}

// RevokeTrust removes appID from the current account's trusted set.
func (a *Authority) RevokeTrust(ctx context.Context, appID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		return false
	}

	a.current.RevokeTrust(appID)
	if err := a.repo.Persist(ctx, a.current); err != nil {
		a.logger.Error(ctx, "revoke persist failed", "error", err.Error())
		return false
	}

	a.logger.Info(ctx, "app trust revoked", "app_id", appID)
	return true
}

// RegenerateAPIKey replaces the current account's API key with a fresh one,
// invalidating the old key for all future lookups. Connections already
// holding the old key are not retroactively torn down.
func (a *Authority) RegenerateAPIKey(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		return common.ErrUnauthorized
	}

	key, err := cryptox.MakeAPIKey(a.current.Username)
	if err != nil {
		return errors.Join(common.ErrInternal, err)
	}

	a.current.APIKey = key
	if err := a.repo.Persist(ctx, a.current); err != nil {
		return err
	}

	a.logger.Info(ctx, "api key regenerated", "username", a.current.Username)
	return nil
}

// CurrentAccount returns a copy of the logged-in account, or nil when the
// process is in the LoggedOut state.
func (a *Authority) CurrentAccount() *models.Account {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		return nil
	}
	c := *a.current
	c.TrustedApps = append([]string(nil), a.current.TrustedApps...)
	return &c
}

func (a *Authority) checkPassword(account *models.Account, password string) bool {
	candidate := cryptox.HashPassword(password, account.Salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(account.PasswordHash)) == 1
}
