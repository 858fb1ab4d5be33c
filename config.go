package docsift

// Config holds the configuration for the docsift server.
type Config struct {
	// Server holds the HTTP listener settings.
	Server ServerConfig `json:"server" yaml:"server"`
	// Backend selects and configures the search backend.
	Backend BackendConfig `json:"backend" yaml:"backend"`
	// QueryLog configures optional persistence of served searches.
	QueryLog QueryLogConfig `json:"query_log,omitempty" yaml:"query_log,omitempty"`
	// Plugins holds per-plugin operator settings (optional).
	Plugins []PluginConfig `json:"plugins,omitempty" yaml:"plugins,omitempty"`
}

// QueryLogConfig configures the query audit log. An empty kind disables it.
type QueryLogConfig struct {
	// Kind is "sqlite" or "postgres"; empty disables the query log.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
	// DSN is the database path (sqlite) or connection string (postgres).
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
	// CORSOrigins lists allowed CORS origins; empty allows any origin.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

// BackendKind identifies a search backend implementation.
type BackendKind string

// BackendKind constants name the supported search backends.
const (
	BackendSQLite   BackendKind = "sqlite"
	BackendPostgres BackendKind = "postgres"
)

// BackendConfig selects and configures the search backend.
type BackendConfig struct {
	// Kind is the backend implementation to use.
	Kind BackendKind `json:"kind" yaml:"kind"`
	// DSN is the database path (sqlite) or connection string (postgres).
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	// UniqueField is the document field duplicate hits are collapsed on
	// when a search asks for unique results. Defaults to "domain".
	UniqueField string `json:"unique_field,omitempty" yaml:"unique_field,omitempty"`
	// SeedFile is an optional JSON file of documents loaded into the
	// backend at startup.
	SeedFile string `json:"seed_file,omitempty" yaml:"seed_file,omitempty"`
}

// PluginConfig holds operator-supplied values for one plugin's declared
// preferences.
type PluginConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Enabled *bool             `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Prefs   map[string]string `json:"prefs,omitempty" yaml:"prefs,omitempty"`
}

// IsEnabled reports whether the plugin config is enabled; a missing
// enabled field counts as enabled.
func (c PluginConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
