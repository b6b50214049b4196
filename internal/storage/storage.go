package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codeverse/backend/internal/models"
	"go.uber.org/zap"
)

// fileStore keeps the tutorial mirror in a single JSON file on the local filesystem
type fileStore struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
	// mu serializes every load-mutate-save cycle and every save
	mu sync.Mutex
}

// NewFileStore creates a new fileStore instance backed by the file at path
func NewFileStore(path string, logger *zap.Logger) *fileStore {
	return &fileStore{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Path returns the location of the mirror file
func (s *fileStore) Path() string {
	return s.path
}

// Exists reports whether the mirror file is present
func (s *fileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the mirror file.
//
// A missing file is an empty mirror. A malformed file is logged and also read as an empty mirror;
// the next save copies it to a timestamped .bak file before replacing it.
// Only an unreadable file returns an error (wrapping ErrMirrorIO).
func (s *fileStore) Load() (*Mirror, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save writes the whole mirror, replacing the previous file
func (s *fileStore) Save(m *Mirror) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(m)
}

// Update loads the mirror, applies fn and saves the result while holding the store lock.
// If fn returns an error nothing is written and the error is returned as is.
func (s *fileStore) Update(fn func(m *Mirror) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	return s.save(m)
}

func (s *fileStore) load() (*Mirror, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewMirror(), nil
	}
	if err != nil {
		s.logger.Error("failed to read mirror file", zap.String("path", s.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", models.ErrMirrorIO, err)
	}

	m := NewMirror()
	if err := json.Unmarshal(data, m); err != nil {
		s.logger.Warn("mirror file is malformed, treating it as empty",
			zap.String("path", s.path),
			zap.Error(fmt.Errorf("%w: %w", models.ErrMirrorParse, err)),
		)
		return NewMirror(), nil
	}
	return m, nil
}

// save writes to a temporary file in the target directory and renames it over the mirror file,
// so a crash never leaves a half-written mirror behind
func (s *fileStore) save(m *Mirror) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode mirror: %w", models.ErrMirrorIO, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create mirror directory: %w", models.ErrMirrorIO, err)
	}

	if err := s.backupMalformed(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temporary file: %w", models.ErrMirrorIO, err)
	}
	tmpPath := tmp.Name()
	// Cleanup: remove the temporary file if anything below fails
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write mirror: %w", models.ErrMirrorIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to sync mirror: %w", models.ErrMirrorIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close mirror: %w", models.ErrMirrorIO, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("%w: failed to set mirror permissions: %w", models.ErrMirrorIO, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: failed to replace mirror: %w", models.ErrMirrorIO, err)
	}
	committed = true

	s.logger.Debug("mirror saved", zap.String("path", s.path), zap.Int("count", m.Len()))
	return nil
}

// backupMalformed copies a mirror file that does not parse next to it, so replacing it loses nothing
func (s *fileStore) backupMalformed() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to read mirror: %w", models.ErrMirrorIO, err)
	}
	if len(bytes.TrimSpace(data)) == 0 || json.Unmarshal(data, NewMirror()) == nil {
		return nil
	}

	backup := fmt.Sprintf("%s.%s.bak", s.path, s.now().UTC().Format("20060102T150405.000000000"))
	if err := os.WriteFile(backup, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to back up malformed mirror: %w", models.ErrMirrorIO, err)
	}
	s.logger.Warn("malformed mirror file backed up before overwrite",
		zap.String("path", s.path),
		zap.String("backup", backup),
	)
	return nil
}
