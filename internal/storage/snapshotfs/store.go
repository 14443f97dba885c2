// Package snapshotfs persists the live snapshot as a single JSON file.
package snapshotfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/models"
)

// FileName is the snapshot file inside the store directory.
const FileName = "latest.json"

// Store provides file-based JSON storage for the published snapshot.
type Store struct {
	dir    string
	logger *common.Logger
}

// NewStore creates the store directory if needed.
func NewStore(logger *common.Logger, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot store path %s: %w", dir, err)
	}

	logger.Info().Str("path", dir).Msg("Snapshot file store opened")
	return &Store{dir: dir, logger: logger}, nil
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load reads the persisted snapshot. A missing file is not an error.
func (s *Store) Load(ctx context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.Path(), err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.Path(), err)
	}
	return &snap, nil
}

// Save writes the snapshot atomically (temp file then rename).
func (s *Store) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Debug().Int("records", len(snap.Records)).Str("path", s.Path()).Msg("Snapshot persisted")
	return nil
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

var _ interfaces.SnapshotStore = (*Store)(nil)
