package models

// UniverseEntry is one tradable symbol with its display metadata.
type UniverseEntry struct {
	Symbol string `json:"symbol" yaml:"symbol" validate:"required"`
	Name   string `json:"name" yaml:"name"`
	Sector string `json:"sector" yaml:"sector"`
}
