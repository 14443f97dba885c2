package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/fnoscan/internal/app"
	"github.com/bobmcallan/fnoscan/internal/server"
)

// testServer creates an httptest.Server with the full fnoscan-server handler.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	configPath := writeTestConfig(t)
	a, err := app.NewApp(configPath)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	ts := httptest.NewServer(server.NewServer(a).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	storagePath := filepath.ToSlash(filepath.Join(dir, "snapshot"))
	content := `environment = "test"

[storage]
backend = "file"
path = "` + storagePath + `"

[logging]
level = "error"
outputs = ["console"]
`
	path := filepath.Join(dir, "fnoscan.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var body server.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("Expected status=ok, got %q", body.Status)
	}
	if body.Snapshot.Ready {
		t.Error("Expected no snapshot before the first refresh")
	}
}

func TestStocksEmptyBeforeRefresh(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/stocks")
	if err != nil {
		t.Fatalf("GET /api/stocks failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty list, got %d records", len(records))
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-config", "a.toml", "-config", "b.toml", "-port", "9000", "-once"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if len(opts.configs) != 2 || opts.configs[0] != "a.toml" || opts.configs[1] != "b.toml" {
		t.Errorf("configs = %v, want [a.toml b.toml]", opts.configs)
	}
	if opts.port != 9000 {
		t.Errorf("port = %d, want 9000", opts.port)
	}
	if !opts.once {
		t.Error("once = false, want true")
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty config", []string{"-config", " "}},
		{"negative port", []string{"-port", "-1"}},
		{"port too large", []string{"-port", "70000"}},
		{"unknown flag", []string{"-verbose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFlags(tt.args); err == nil {
				t.Errorf("parseFlags(%v) expected error", tt.args)
			}
		})
	}
}
