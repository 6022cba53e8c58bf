// Package models defines the persisted data types: accounts and vault
// records.
package models

import "time"

// Account is the identity record for one vault user. The raw password is
// never stored; PasswordHash is a PBKDF2 verifier over the per-account salt.
type Account struct {
	// Username is unique and acts as the primary key.
	Username string `json:"username"`

	// PasswordHash is the base64 PBKDF2-SHA256 verifier.
	PasswordHash string `json:"password_hash"`

	// Salt is the random per-account salt, base64-encoded in storage.
	Salt []byte `json:"salt"`

	// APIKey is the opaque bearer credential ("<username>_<base64>"),
	// replaced wholesale on regeneration.
	APIKey string `json:"api_key"`

	// TrustedApps holds the identifiers of applications the user has
	// approved for vault access.
	TrustedApps []string `json:"trusted_apps"`

	// SessionExpiration bounds the validity of APIKey-based sessions.
	// Nil means no session has been opened.
	SessionExpiration *time.Time `json:"session_expiration,omitempty"`
}

// TrustApp adds appID to the trusted set. Adding an already-trusted
// identifier is a no-op, so the set never holds duplicates.
func (a *Account) TrustApp(appID string) {
	for _, id := range a.TrustedApps {
		if id == appID {
			return
		}
	}
	a.TrustedApps = append(a.TrustedApps, appID)
}

// RevokeTrust removes appID from the trusted set.
func (a *Account) RevokeTrust(appID string) {
	for i, id := range a.TrustedApps {
		if id == appID {
			a.TrustedApps = append(a.TrustedApps[:i], a.TrustedApps[i+1:]...)
			return
		}
	}
}

// IsTrusted reports whether appID is in the trusted set.
func (a *Account) IsTrusted(appID string) bool {
	for _, id := range a.TrustedApps {
		if id == appID {
			return true
		}
	}
	return false
}
