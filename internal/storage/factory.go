// Package storage selects the snapshot persistence backend.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/storage/snapshotfs"
	"github.com/bobmcallan/fnoscan/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendFile      = "file"
	BackendSurrealDB = "surrealdb"
)

// NewSnapshotStore creates a snapshot store based on the configuration.
// Supported backends: "file" (default), "surrealdb".
func NewSnapshotStore(ctx context.Context, logger *common.Logger, cfg common.StorageConfig) (interfaces.SnapshotStore, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		path := cfg.Path
		if path == "" {
			path = "data/snapshot"
		}
		return snapshotfs.NewStore(logger, path)

	case BackendSurrealDB:
		return surrealdb.NewSnapshotStore(ctx, logger, cfg)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, surrealdb)", backend)
	}
}
