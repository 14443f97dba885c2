package refresh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultUniverse(t *testing.T) {
	u := DefaultUniverse()
	require.GreaterOrEqual(t, len(u), 50)

	seen := map[string]bool{}
	for _, e := range u {
		assert.Equal(t, strings.ToUpper(e.Symbol), e.Symbol)
		assert.NotEmpty(t, e.Name, e.Symbol)
		assert.NotEmpty(t, e.Sector, e.Symbol)
		assert.False(t, seen[e.Symbol], "duplicate %s", e.Symbol)
		seen[e.Symbol] = true
	}
	assert.Equal(t, "RELIANCE", u[0].Symbol)
}

func TestParseUniverse(t *testing.T) {
	u, err := ParseUniverse([]byte(`
symbols:
  - { symbol: " infy ", name: Infosys, sector: IT }
  - { symbol: TCS }
`))
	require.NoError(t, err)
	require.Len(t, u, 2)
	assert.Equal(t, "INFY", u[0].Symbol)
	assert.Equal(t, "IT", u[0].Sector)
	assert.Equal(t, "TCS", u[1].Symbol)
	assert.Empty(t, u[1].Sector)
}

func TestParseUniverse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"malformed", "symbols: [", "failed to parse"},
		{"empty", "symbols: []", "no symbols"},
		{"missing symbol", "symbols:\n  - { name: Nameless }", "invalid universe"},
		{"duplicate", "symbols:\n  - { symbol: SBIN }\n  - { symbol: sbin }", "duplicate symbol SBIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUniverse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadUniverse(t *testing.T) {
	u, err := LoadUniverse("")
	require.NoError(t, err)
	assert.Equal(t, DefaultUniverse(), u)

	path := filepath.Join(t.TempDir(), "universe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbols:\n  - { symbol: ITC, sector: FMCG }\n"), 0644))
	u, err = LoadUniverse(path)
	require.NoError(t, err)
	require.Len(t, u, 1)
	assert.Equal(t, "ITC", u[0].Symbol)

	_, err = LoadUniverse(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
