package vault

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/firevault/firevault/internal/common"
	"github.com/firevault/firevault/internal/cryptox"
	"github.com/firevault/firevault/internal/dbx"
	"github.com/firevault/firevault/internal/logging"
	"github.com/firevault/firevault/internal/migrations"
	"github.com/firevault/firevault/internal/models"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// goose keeps dialect and base FS as package state; set them once.
var gooseSetup sync.Once

// userDB is one user's open database. Its mutex serializes writes so that
// concurrent read-modify-write sequences cannot lose updates; the record
// schema carries no version field to detect them otherwise.
type userDB struct {
	db *sql.DB
	mu sync.Mutex
}

// Store owns the per-user vault databases. All payloads pass through the
// encryption engine on the way in; plaintext is never written to storage.
type Store struct {
	dataDir string
	logger  logging.Logger

	mu  sync.Mutex
	dbs map[string]*userDB
}

func NewStore(dataDir string, logger logging.Logger) *Store {
	return &Store{
		dataDir: dataDir,
		logger:  logger.With("module", "vault"),
		dbs:     make(map[string]*userDB),
	}
}

// InitializeForUser idempotently ensures the user's database exists, is
// migrated and carries its bootstrap metadata.
func (s *Store) InitializeForUser(ctx context.Context, username string) error {
	_, err := s.forUser(ctx, username)
	return err
}

// Save encrypts plaintext under the passphrase and stores it as a new
// record, returning the generated id.
func (s *Store) Save(ctx context.Context, title, plaintext, recordType, passphrase, owner string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}

	u, err := s.forUser(ctx, owner)
	if err != nil {
		return "", err
	}

	encrypted, err := cryptox.Encrypt(plaintext, passphrase)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	rec := &models.VaultRecord{
		ID:               uuid.NewString(),
		Title:            title,
		EncryptedPayload: encrypted,
		Type:             recordType,
		Owner:            owner,
		CreatedAt:        time.Now().UTC(),
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if err := NewSQLiteRepository(u.db).Insert(ctx, rec); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}

	s.logger.Info(ctx, "vault record saved", "id", rec.ID, "owner", owner)
	return rec.ID, nil
}

// List returns the user's record metadata, newest first. Read failures
// degrade to an empty slice; the failure is logged.
func (s *Store) List(ctx context.Context, owner string) []models.VaultRecord {
	u, err := s.forUser(ctx, owner)
	if err != nil {
		s.logger.Warn(ctx, "vault list degraded to empty", "owner", owner, "error", err.Error())
		return []models.VaultRecord{}
	}

	records, err := NewSQLiteRepository(u.db).GetAll(ctx)
	if err != nil {
		s.logger.Warn(ctx, "vault list degraded to empty", "owner", owner, "error", err.Error())
		return []models.VaultRecord{}
	}

	for i := range records {
		records[i].Owner = owner
	}
	return records
}

// DecryptOne loads a record by id and decrypts its payload. It fails with
// common.ErrNotFound for an unknown id and common.ErrDecryptionFailed for a
// wrong passphrase.
func (s *Store) DecryptOne(ctx context.Context, id, passphrase, owner string) (string, error) {
	u, err := s.forUser(ctx, owner)
	if err != nil {
		return "", err
	}

	rec, err := NewSQLiteRepository(u.db).GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	return cryptox.Decrypt(rec.EncryptedPayload, passphrase)
}

// Delete removes a record by id, reporting whether a row was removed.
func (s *Store) Delete(ctx context.Context, id, owner string) (bool, error) {
	u, err := s.forUser(ctx, owner)
	if err != nil {
		return false, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	deleted, err := NewSQLiteRepository(u.db).DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}

	if deleted {
		s.logger.Info(ctx, "vault record deleted", "id", id, "owner", owner)
	}
	return deleted, nil
}

// Close closes all open user databases.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for username, u := range s.dbs {
		if err := u.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.dbs, username)
	}
	return firstErr
}

func (s *Store) forUser(ctx context.Context, username string) (*userDB, error) {
	if username == "" || strings.ContainsAny(username, `/\`) {
		return nil, fmt.Errorf("%w: bad owner %q", common.ErrValidation, username)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.dbs[username]; ok {
		return u, nil
	}

	u, err := s.open(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	s.dbs[username] = u
	return u, nil
}

func (s *Store) open(ctx context.Context, username string) (*userDB, error) {
	if err := os.MkdirAll(s.dataDir, 0o700); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dataDir, username+".fdb")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := s.migrate(ctx, db, username); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Info(ctx, "vault database ready", "owner", username)
	return &userDB{db: db}, nil
}

func (s *Store) migrate(ctx context.Context, db *sql.DB, username string) error {
	var setupErr error
	gooseSetup.Do(func() {
		goose.SetBaseFS(migrations.Migrations)
		goose.SetLogger(goose.NopLogger())
		setupErr = goose.SetDialect("sqlite3")
	})
	if setupErr != nil {
		return setupErr
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	// Seed bootstrap metadata atomically: either all keys exist afterwards
	// or none were written.
	seed := [][2]string{
		{"schema_version", "1.0"},
		{"created_at", time.Now().UTC().Format(time.RFC3339)},
		{"username", username},
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, kv := range seed {
			_, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO metadata (key, value) VALUES (?, ?)`, kv[0], kv[1])
			if err != nil {
				return err
			}
		}
		return nil
	})
}
