package docsift

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads and parses a config file from the given path.
// Supported formats: JSON (.json), YAML (.yaml, .yml).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	return &cfg, nil
}

// ValidateConfig validates a Config for correctness.
func ValidateConfig(cfg Config) error {
	// Default to the embedded backend when kind is omitted to match
	// runtime behavior.
	kind := cfg.Backend.Kind
	if kind == "" {
		kind = BackendSQLite
	}

	switch kind {
	case BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("unknown backend kind: %q", cfg.Backend.Kind)
	}

	if kind == BackendPostgres && strings.TrimSpace(cfg.Backend.DSN) == "" {
		return fmt.Errorf("postgres backend requires a dsn")
	}

	switch cfg.QueryLog.Kind {
	case "", "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.QueryLog.DSN) == "" {
			return fmt.Errorf("postgres query log requires a dsn")
		}
	default:
		return fmt.Errorf("unknown query log kind: %q", cfg.QueryLog.Kind)
	}

	seen := make(map[string]struct{}, len(cfg.Plugins))
	for _, pc := range cfg.Plugins {
		if pc.Name == "" {
			return fmt.Errorf("plugin config entry is missing a name")
		}
		if _, dup := seen[pc.Name]; dup {
			return fmt.Errorf("duplicate plugin config for %q", pc.Name)
		}
		seen[pc.Name] = struct{}{}
	}

	return nil
}

// ValidatePluginPrefs checks operator-supplied plugin settings against the
// preference declarations collected by the registry: every configured
// plugin must exist, and every configured key must be declared by that
// plugin. Run it after discovery, before serving.
func ValidatePluginPrefs(cfg Config, declared map[string]map[string]string) error {
	for _, pc := range cfg.Plugins {
		if !pc.IsEnabled() || len(pc.Prefs) == 0 {
			continue
		}
		prefs, ok := declared[pc.Name]
		if !ok {
			return fmt.Errorf("plugin %q has configured prefs but declares none", pc.Name)
		}
		for key := range pc.Prefs {
			if _, ok := prefs[key]; !ok {
				return fmt.Errorf("plugin %q does not declare preference %q", pc.Name, key)
			}
		}
	}
	return nil
}
