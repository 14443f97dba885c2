package models

import "time"

// SectorSummary aggregates the records of one sector.
type SectorSummary struct {
	Name     string  `json:"name"`
	Change   float64 `json:"change"`
	Volume   int64   `json:"volume"`
	TopStock string  `json:"top_stock"`
	Count    int     `json:"count"`
}

// SectorHeatmap is the sector endpoint payload.
type SectorHeatmap struct {
	Timestamp time.Time       `json:"timestamp"`
	Sectors   []SectorSummary `json:"sectors"`
}
