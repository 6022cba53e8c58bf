package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/firevault/firevault/internal/common"
	"github.com/firevault/firevault/internal/cryptox"
	"github.com/firevault/firevault/internal/logging"
	"github.com/firevault/firevault/internal/models"
)

// FileRepository keeps all accounts in one JSON file. Every mutation loads
// the whole collection, modifies it and writes it back; mu serializes those
// sequences because the file gives no transaction isolation of its own.
type FileRepository struct {
	path   string
	mu     sync.Mutex
	logger logging.Logger
}

func NewFileRepository(path string, logger logging.Logger) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return &FileRepository{path: path, logger: logger.With("module", "accounts")}, nil
}

func (r *FileRepository) Register(ctx context.Context, username, password string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load()
	if err != nil {
		return nil, err
	}

	if len(all) >= MaxAccounts {
		return nil, common.ErrCapacityExceeded
	}

	for _, a := range all {
		if a.Username == username {
			return nil, common.ErrDuplicateUsername
		}
	}

	salt, err := cryptox.MakeSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	apiKey, err := cryptox.MakeAPIKey(username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	account := models.Account{
		Username:     username,
		PasswordHash: cryptox.HashPassword(password, salt),
		Salt:         salt,
		APIKey:       apiKey,
		TrustedApps:  []string{},
	}

	all = append(all, account)
	if err := r.save(all); err != nil {
		return nil, err
	}

	r.logger.Info(ctx, "account registered", "username", username)
	return &account, nil
}

func (r *FileRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].Username == username {
			a := all[i]
			return &a, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *FileRepository) FindByAPIKey(ctx context.Context, apiKey string) (*models.Account, error) {
	if apiKey == "" {
		return nil, common.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load()
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].APIKey == apiKey {
			a := all[i]
			return &a, nil
		}
	}
	return nil, common.ErrNotFound
}

// List degrades to an empty slice on read failure to keep listings
// responsive; the failure is logged, not swallowed silently.
func (r *FileRepository) List(ctx context.Context) []models.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load()
	if err != nil {
		r.logger.Warn(ctx, "account list degraded to empty", "error", err.Error())
		return []models.Account{}
	}
	return all
}

func (r *FileRepository) Persist(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.load()
	if err != nil {
		return err
	}

	for i := range all {
		if all[i].Username == account.Username {
			all[i] = *account
			return r.save(all)
		}
	}
	return common.ErrNotFound
}

func (r *FileRepository) load() ([]models.Account, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Account{}, nil
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}

	var all []models.Account
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return all, nil
}

func (r *FileRepository) save(all []models.Account) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}

	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return nil
}
