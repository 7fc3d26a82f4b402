// Package storage persists the contact store as a single JSON snapshot file.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/smileynet/agenda/internal/contact"
)

// ErrCorrupt indicates the data file exists but does not hold a valid snapshot.
var ErrCorrupt = errors.New("storage: corrupt data file")

// snapshot is the on-disk representation of the store.
type snapshot struct {
	Contacts map[string]contact.Contact `json:"contacts"`
}

// FileStore loads and saves the whole contact store at a fixed path.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a FileStore bound to path. A nil logger disables logging.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger.Named("storage")}
}

// Path returns the data file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the store from disk.
//
// A missing or empty file yields an empty store and no error. When the file
// cannot be read or parsed, Load returns an empty store together with the
// error so the caller can report it and carry on.
func (s *FileStore) Load() (*contact.Store, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("data file not found, starting empty", zap.String("path", s.path))
			return contact.NewStore(), nil
		}
		s.logger.Warn("reading data file", zap.String("path", s.path), zap.Error(err))
		return contact.NewStore(), fmt.Errorf("storage: reading %s: %w", s.path, err)
	}

	if len(data) == 0 {
		return contact.NewStore(), nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("parsing data file", zap.String("path", s.path), zap.Error(err))
		return contact.NewStore(), fmt.Errorf("%w: parsing %s: %v", ErrCorrupt, s.path, err)
	}
	// Phone format is checked where input enters, not on stored data.
	for phone := range snap.Contacts {
		if !contact.IsValidPhone(phone) {
			s.logger.Warn("non-conforming phone key kept", zap.String("path", s.path), zap.String("phone", phone))
		}
	}

	store := contact.FromMap(snap.Contacts)
	s.logger.Info("loaded contacts", zap.String("path", s.path), zap.Int("count", store.Len()))
	return store, nil
}

// Save overwrites the data file with a full snapshot of store.
// The file is written to a temporary sibling and renamed into place, so a
// failed save leaves the previous snapshot intact.
func (s *FileStore) Save(store *contact.Store) error {
	data, err := json.MarshalIndent(snapshot{Contacts: store.Snapshot()}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshaling: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: writing %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: writing %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: writing %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		s.logger.Warn("saving contacts", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("storage: writing %s: %w", s.path, err)
	}

	s.logger.Info("saved contacts", zap.String("path", s.path), zap.Int("count", store.Len()))
	return nil
}
