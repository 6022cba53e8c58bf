package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/firevault/firevault/internal/common"
	"github.com/firevault/firevault/internal/dbx"
	"github.com/firevault/firevault/internal/models"
)

// timeLayout is a fixed-width RFC 3339 form (fraction always padded to nine
// digits). created_at is stored as TEXT and sorted lexicographically, so the
// width must not vary: time.RFC3339Nano trims trailing zeros, which makes
// "...00.1Z" sort after "...00.1000001Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.VaultRecord) error {
	query := `INSERT INTO vault_items (id, title, encrypted_data, type, created_at)
			VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Title, rec.EncryptedPayload, rec.Type, rec.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert vault item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.VaultRecord, error) {
	// created_at is fixed-width RFC 3339 UTC, so lexicographic order is
	// chronological; rowid breaks ties by insertion order.
	query := `SELECT id, title, type, created_at FROM vault_items
			ORDER BY created_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select vault items: %w", err)
	}
	defer rows.Close()

	var result []models.VaultRecord
	for rows.Next() {
		var item models.VaultRecord
		var createdAt string
		if err := rows.Scan(&item.ID, &item.Title, &item.Type, &createdAt); err != nil {
			return nil, err
		}
		if item.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("bad created_at for %s: %w", item.ID, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.VaultRecord, error) {
	query := `SELECT id, title, encrypted_data, type, created_at FROM vault_items WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	rec := &models.VaultRecord{}
	var createdAt string
	err := row.Scan(&rec.ID, &rec.Title, &rec.EncryptedPayload, &rec.Type, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at for %s: %w", id, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vault_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete vault item: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}
