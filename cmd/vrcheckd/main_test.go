package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrcheck/internal/config"
	"vrcheck/internal/storage"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParseConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vrcheck.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen = ":9000"
quorum = 2
replicas = ["a", "b", "c"]
log_level = "warn"
`), 0o644))

	cfg, err := parseConfig([]string{"--config", path, "--quorum", "3", "--replicas", "n1,n2,n3,n4", "--monotonic=false"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr, "file value kept")
	assert.Equal(t, "warn", cfg.LogLevel, "file value kept")
	assert.Equal(t, 3, cfg.Quorum)
	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, cfg.Replicas)
	assert.False(t, cfg.Monotonic)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"bad replicas", []string{"--replicas", "n1,n1"}},
		{"quorum too large", []string{"--replicas", "n1,n2", "--quorum", "3"}},
		{"missing config", []string{"--config", "/nonexistent/vrcheck.toml"}},
		{"bad level", []string{"--log-level", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestOpenStore(t *testing.T) {
	store, err := openStore(config.Default())
	require.NoError(t, err)
	assert.IsType(t, &storage.InMemoryStore{}, store)

	cfg := config.Default()
	cfg.TraceDB = filepath.Join(t.TempDir(), "trace.db")
	store, err = openStore(cfg)
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &storage.SQLiteStore{}, store)
}
