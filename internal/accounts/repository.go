// Package accounts implements the durable account store: a flat JSON
// collection with whole-file read-modify-write semantics.
package accounts

import (
	"context"

	"github.com/firevault/firevault/internal/models"
)

// MaxAccounts caps how many accounts the store will hold.
const MaxAccounts = 5

// Repository describes the account store operations. Persist is the unit of
// atomicity: implementations rewrite the whole collection per mutation and
// must serialize concurrent mutations internally.
type Repository interface {
	// Register creates a new account with a fresh salt, password hash and
	// API key. It fails with common.ErrCapacityExceeded when MaxAccounts
	// accounts already exist and common.ErrDuplicateUsername when the name
	// is taken.
	Register(ctx context.Context, username, password string) (*models.Account, error)

	// FindByUsername returns the account with the given username or
	// common.ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)

	// FindByAPIKey returns the account holding the given API key or
	// common.ErrNotFound.
	FindByAPIKey(ctx context.Context, apiKey string) (*models.Account, error)

	// List returns all accounts. Read failures degrade to an empty slice.
	List(ctx context.Context) []models.Account

	// Persist writes back a mutated account.
	Persist(ctx context.Context, account *models.Account) error
}
