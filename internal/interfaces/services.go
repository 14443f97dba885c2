package interfaces

import (
	"context"

	"github.com/bobmcallan/fnoscan/internal/models"
)

// StockService answers queries over the published snapshot
type StockService interface {
	// List returns filtered and sorted records
	List(ctx context.Context, q models.StockQuery) []models.StockRecord

	// Get returns one cached record
	Get(ctx context.Context, symbol string) (*models.StockRecord, error)

	// Detail returns a record with fundamentals, returns and chart data
	Detail(ctx context.Context, symbol string) (*models.StockRecord, error)

	// TopBy returns the first limit records ordered by field
	TopBy(ctx context.Context, field string, limit int, desc bool) []models.StockRecord

	// Sectors aggregates the snapshot by sector
	Sectors(ctx context.Context) models.SectorHeatmap

	// MarketStatus reports the calendar state for now
	MarketStatus(ctx context.Context) models.MarketStatus

	// ChartPNG renders a price chart for the symbol
	ChartPNG(ctx context.Context, symbol string, width int) ([]byte, error)

	// Indices returns headline index quotes
	Indices(ctx context.Context) []models.IndexQuote
}

// RefreshService drives the background refresh pipeline
type RefreshService interface {
	// Seed publishes the persisted snapshot, if any
	Seed(ctx context.Context) error

	// RunOnce executes one full refresh cycle
	RunOnce(ctx context.Context) (*models.Snapshot, error)

	// Run loops until ctx is cancelled
	Run(ctx context.Context)

	// OnPublish registers a listener for snapshot events
	OnPublish(fn func(models.SnapshotEvent))
}
