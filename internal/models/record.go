package models

import "time"

// VaultRecord is one encrypted secret entry owned by a single account.
// Records are immutable except for deletion.
type VaultRecord struct {
	// ID is an opaque unique identifier assigned at creation.
	ID string `json:"id"`

	// Title is a non-empty human label.
	Title string `json:"title"`

	// EncryptedPayload is base64(salt||iv||ciphertext); see cryptox.
	// It is omitted from listings handed to external callers.
	EncryptedPayload string `json:"-"`

	// Type is a free-text category used only for display iconography.
	Type string `json:"type"`

	// Owner is the username the record belongs to.
	Owner string `json:"owner"`

	// CreatedAt is the creation time in UTC.
	CreatedAt time.Time `json:"created_at"`
}
