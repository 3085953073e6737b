package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Defaults applied by Default and by Load for unset fields.
const (
	DefaultListenAddr = ":7400"
	DefaultLogLevel   = "info"
)

// Config holds the check daemon configuration.
type Config struct {
	ListenAddr string   `toml:"listen"`
	Quorum     int      `toml:"quorum"`   // 0 derives a majority
	Replicas   []string `toml:"replicas"` // expected replica IDs, optional
	TraceDB    string   `toml:"trace_db"` // sqlite path; empty keeps traces in memory
	LogPath    string   `toml:"log_path"` // empty logs to stderr
	LogLevel   string   `toml:"log_level"`
	Monotonic  bool     `toml:"monotonic"` // also compare consecutive snapshots per session
}

// Default returns a Config with every default filled in.
func Default() Config {
	return Config{
		ListenAddr: DefaultListenAddr,
		LogLevel:   DefaultLogLevel,
		Monotonic:  true,
	}
}

// Load decodes a TOML file on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.Quorum < 0 {
		return fmt.Errorf("quorum cannot be negative: %d", c.Quorum)
	}
	if n := len(c.Replicas); n > 0 && c.Quorum > n {
		return fmt.Errorf("quorum=%d exceeds replica count=%d", c.Quorum, n)
	}
	seen := make(map[string]bool, len(c.Replicas))
	for _, id := range c.Replicas {
		if id == "" {
			return fmt.Errorf("replica ID cannot be empty")
		}
		if seen[id] {
			return fmt.Errorf("duplicate replica ID: %s", id)
		}
		seen[id] = true
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
	return nil
}

// ClusterSize is the number of configured replicas, 0 when unknown.
func (c *Config) ClusterSize() int {
	return len(c.Replicas)
}

// ParseReplicas parses a comma-separated list of replica IDs:
// "n1,n2,n3"
func ParseReplicas(replicasStr string) ([]string, error) {
	if replicasStr == "" {
		return []string{}, nil
	}

	parts := strings.Split(replicasStr, ",")
	replicas := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if strings.ContainsAny(id, " =") {
			return nil, fmt.Errorf("invalid replica ID: %q", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate replica ID: %s", id)
		}
		seen[id] = true
		replicas = append(replicas, id)
	}

	return replicas, nil
}
