// Package interfaces defines service contracts for fnoscan
package interfaces

import (
	"context"

	"github.com/bobmcallan/fnoscan/internal/models"
)

// MarketDataClient provides price history and quotes for a symbol.
// Symbols are exchange base symbols (e.g. "RELIANCE"); implementations map
// them to provider tickers. Index symbols start with "^" and are passed as-is.
type MarketDataClient interface {
	// GetBars returns daily bars for the range ("5d", "6mo", "1y", "max"),
	// oldest first with no duplicate dates.
	GetBars(ctx context.Context, symbol, rng string) ([]models.Bar, error)

	// GetQuote returns the latest session values.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// FundamentalsClient provides valuation data for detail enrichment.
type FundamentalsClient interface {
	GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error)
}

// MarketDataProvider is a client offering both price and fundamentals data.
type MarketDataProvider interface {
	MarketDataClient
	FundamentalsClient
}
