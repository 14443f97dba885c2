// Package surrealdb persists the published snapshot in SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/models"
)

const (
	snapshotTable = "snapshot"
	latestID      = "latest"
	saveAttempts  = 3
)

// snapshotDoc is the stored document. The snapshot is nested so its fields
// never collide with the record id.
type snapshotDoc struct {
	Snapshot models.Snapshot `json:"snapshot"`
	SavedAt  time.Time       `json:"saved_at"`
}

// SnapshotStore implements interfaces.SnapshotStore using SurrealDB.
type SnapshotStore struct {
	db     *surrealdb.DB
	logger *common.Logger
	owned  bool
}

// NewSnapshotStore connects, signs in and selects the configured namespace.
func NewSnapshotStore(ctx context.Context, logger *common.Logger, cfg common.StorageConfig) (*SnapshotStore, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	s, err := NewSnapshotStoreWithDB(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	s.owned = true

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB snapshot store initialized")

	return s, nil
}

// NewSnapshotStoreWithDB wraps an existing connection. The caller keeps
// ownership of db.
func NewSnapshotStoreWithDB(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*SnapshotStore, error) {
	// SurrealDB v3 errors on querying non-existent tables
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", snapshotTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", snapshotTable, err)
	}
	return &SnapshotStore{db: db, logger: logger}, nil
}

// Load returns the persisted snapshot, or nil when none has been saved.
func (s *SnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	doc, err := surrealdb.Select[snapshotDoc](ctx, s.db, surrealmodels.NewRecordID(snapshotTable, latestID))
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshot: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	snap := doc.Snapshot
	return &snap, nil
}

// Save upserts the snapshot into snapshot:latest.
func (s *SnapshotStore) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID(snapshotTable, latestID),
		"data": snapshotDoc{Snapshot: *snap, SavedAt: time.Now().UTC()},
	}

	var lastErr error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		_, err := surrealdb.Query[[]snapshotDoc](ctx, s.db, sql, vars)
		if err == nil {
			s.logger.Debug().Int("records", len(snap.Records)).Msg("Snapshot persisted to SurrealDB")
			return nil
		}
		lastErr = err
		s.logger.Warn().Err(err).Int("attempt", attempt).Msg("Snapshot upsert failed")
	}
	return fmt.Errorf("failed to save snapshot after retries: %w", lastErr)
}

// Close closes the connection when the store opened it.
func (s *SnapshotStore) Close() error {
	if s.owned && s.db != nil {
		return s.db.Close(context.Background())
	}
	return nil
}

var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)
