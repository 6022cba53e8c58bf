// Package vault implements the encrypted record store: a per-user SQLite
// database holding ciphertext rows, fronted by a Store that routes every
// payload through the encryption engine.
package vault

import (
	"context"

	"github.com/firevault/firevault/internal/models"
)

// Repository describes row operations against one user's database. The
// database file itself is scoped to a single owner, so queries can never
// cross user boundaries even if misused.
type Repository interface {
	// Insert stores a new encrypted record.
	Insert(ctx context.Context, rec *models.VaultRecord) error

	// GetAll returns record metadata (no payloads), newest first; records
	// sharing a creation time are ordered by descending insertion order.
	GetAll(ctx context.Context) ([]models.VaultRecord, error)

	// GetByID returns one record including its encrypted payload, or
	// common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.VaultRecord, error)

	// DeleteByID removes a record, reporting whether a row was removed.
	DeleteByID(ctx context.Context, id string) (bool, error)
}
