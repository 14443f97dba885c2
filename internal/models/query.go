package models

// Sort fields accepted by StockQuery.SortBy
const (
	SortRank       = "rank"
	SortSymbol     = "symbol"
	SortPrice      = "price"
	SortChange     = "change"
	SortVolume     = "volume"
	SortAvg3Day    = "avg_3day"
	SortVolatility = "volatility"
	SortRSI        = "rsi"
	SortStrength   = "strength"
)

// StockQuery describes a filter and ordering over snapshot records.
// Nil bounds and empty strings are ignored.
type StockQuery struct {
	Search string
	Sector string

	MinPrice      *float64
	MaxPrice      *float64
	MinVolume     *int64
	MaxVolume     *int64
	MinChangePct  *float64
	MaxChangePct  *float64
	MinAvg3Day    *float64
	MaxAvg3Day    *float64
	MinVolatility *float64
	MaxVolatility *float64
	MaxRank       *int

	ConstantOnly   bool
	GainersOnly    bool
	LosersOnly     bool
	HighVolumeOnly bool

	// Set filters match any of the comma-separated values
	MACDStatus    string
	RSIZone       string
	Strength      string
	PDay1Strength string
	PDay2Strength string
	PDay3Strength string
	Avg3Strength  string

	// Strict filters match one label exactly
	TodayStr string
	P1Str    string
	P2Str    string
	P3Str    string
	Avg3Str  string

	SortBy    string
	SortOrder string // asc or desc
}
