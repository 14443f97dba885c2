package refresh

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/fnoscan/internal/models"
)

//go:embed universe.yaml
var defaultUniverseYAML []byte

type universeFile struct {
	Exchange string                 `yaml:"exchange"`
	Symbols  []models.UniverseEntry `yaml:"symbols" validate:"dive"`
}

// DefaultUniverse returns the built-in F&O symbol list.
func DefaultUniverse() []models.UniverseEntry {
	entries, err := ParseUniverse(defaultUniverseYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded universe.yaml is invalid: %v", err))
	}
	return entries
}

// LoadUniverse reads a universe YAML file. An empty path returns the
// built-in list.
func LoadUniverse(path string) ([]models.UniverseEntry, error) {
	if path == "" {
		return DefaultUniverse(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file %s: %w", path, err)
	}
	entries, err := ParseUniverse(data)
	if err != nil {
		return nil, fmt.Errorf("universe file %s: %w", path, err)
	}
	return entries, nil
}

// ParseUniverse decodes and validates a universe document. Symbols are
// upper-cased and must be unique.
func ParseUniverse(data []byte) ([]models.UniverseEntry, error) {
	var doc universeFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse universe: %w", err)
	}
	if err := validator.New().Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid universe: %w", err)
	}
	if len(doc.Symbols) == 0 {
		return nil, fmt.Errorf("universe has no symbols")
	}

	seen := make(map[string]struct{}, len(doc.Symbols))
	out := make([]models.UniverseEntry, 0, len(doc.Symbols))
	for _, e := range doc.Symbols {
		e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
		if _, dup := seen[e.Symbol]; dup {
			return nil, fmt.Errorf("duplicate symbol %s", e.Symbol)
		}
		seen[e.Symbol] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}
