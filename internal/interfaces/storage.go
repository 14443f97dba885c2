package interfaces

import (
	"context"

	"github.com/bobmcallan/fnoscan/internal/models"
)

// SnapshotStore persists the latest published snapshot for cold start.
type SnapshotStore interface {
	// Load returns the persisted snapshot, or nil with no error when none exists.
	Load(ctx context.Context) (*models.Snapshot, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snap *models.Snapshot) error

	// Close releases backend resources.
	Close() error
}
