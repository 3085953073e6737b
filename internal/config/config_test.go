package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplicas(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "empty string",
			input: "",
			want:  []string{},
		},
		{
			name:  "single replica",
			input: "n1",
			want:  []string{"n1"},
		},
		{
			name:  "multiple replicas",
			input: "n1,n2,n3",
			want:  []string{"n1", "n2", "n3"},
		},
		{
			name:  "with spaces and empty parts",
			input: " n1 , n2 ,, n3 ",
			want:  []string{"n1", "n2", "n3"},
		},
		{
			name:    "duplicate",
			input:   "n1,n2,n1",
			wantErr: true,
		},
		{
			name:    "id=addr form is rejected",
			input:   "n1=127.0.0.1:50051",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReplicas(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseReplicas() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vrcheck.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen = "127.0.0.1:9000"
quorum = 2
replicas = ["n1", "n2", "n3"]
trace_db = "traces.db"
log_level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 2, cfg.Quorum)
	assert.Equal(t, []string{"n1", "n2", "n3"}, cfg.Replicas)
	assert.Equal(t, "traces.db", cfg.TraceDB)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Monotonic, "unset keys keep their defaults")
	assert.Equal(t, 3, cfg.ClusterSize())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `lisen = ":1"`},
		{"bad syntax", `listen = `},
		{"quorum exceeds replicas", "quorum = 4\nreplicas = [\"n1\", \"n2\"]"},
		{"negative quorum", `quorum = -1`},
		{"duplicate replica", `replicas = ["n1", "n1"]`},
		{"bad log level", `log_level = "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.ClusterSize())
}
