package calendar

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed holidays.yaml
var defaultHolidaysYAML []byte

const dateLayout = "2006-01-02"

type holidayFile struct {
	Exchange string         `yaml:"exchange"`
	Holidays []holidayEntry `yaml:"holidays"`
}

type holidayEntry struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// DefaultHolidays returns the built-in NSE holiday list keyed by YYYY-MM-DD.
func DefaultHolidays() map[string]string {
	h, err := ParseHolidays(defaultHolidaysYAML)
	if err != nil {
		panic(fmt.Sprintf("calendar: embedded holidays invalid: %v", err))
	}
	return h
}

// LoadHolidays reads a holidays YAML file in the same layout as the built-in list.
func LoadHolidays(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holidays file %s: %w", path, err)
	}
	h, err := ParseHolidays(data)
	if err != nil {
		return nil, fmt.Errorf("holidays file %s: %w", path, err)
	}
	return h, nil
}

// ParseHolidays decodes a holidays YAML document.
func ParseHolidays(data []byte) (map[string]string, error) {
	var f holidayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse holidays: %w", err)
	}

	out := make(map[string]string, len(f.Holidays))
	for _, h := range f.Holidays {
		if _, err := time.Parse(dateLayout, h.Date); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", h.Date, err)
		}
		out[h.Date] = h.Name
	}
	return out, nil
}
