// Package credentials stores the caller's provider API key. The analysis
// pipeline itself never persists credentials; it only asks this store to
// clear them when a provider rejects the key.
package credentials

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cliplens/cliplens/errors"
	"github.com/cliplens/cliplens/models"
)

// Store is the credential persistence contract. A nil result with a nil
// error means no credentials are configured.
type Store interface {
	Get(ctx context.Context) (*models.Credentials, error)
	Save(ctx context.Context, creds models.Credentials) error
	Clear(ctx context.Context) error
}

// FileStore keeps credentials in a mode-0600 JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	const op = "credentials.NewFileStore"

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Internal(op, err, "failed to create credentials directory")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Get(ctx context.Context) (*models.Credentials, error) {
	const op = "FileStore.Get"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Internal(op, err, "failed to read credentials")
	}

	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, errors.Internal(op, err, "stored credentials are corrupt")
	}
	if !creds.HasKey() {
		return nil, nil
	}
	return &creds, nil
}

func (s *FileStore) Save(ctx context.Context, creds models.Credentials) error {
	const op = "FileStore.Save"

	if !creds.Provider.Valid() {
		return errors.InvalidInput(op, nil, "unsupported provider")
	}
	if !creds.HasKey() {
		return errors.InvalidInput(op, nil, "API key is required")
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return errors.Internal(op, err, "failed to encode credentials")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return errors.Internal(op, err, "failed to write credentials")
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	const op = "FileStore.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Internal(op, err, "failed to clear credentials")
	}
	return nil
}
