package config

// ServiceConfig is the top-level service configuration loaded from YAML.
type ServiceConfig struct {
	ListenAddr  string         `yaml:"listen_addr"`
	MetricsAddr string         `yaml:"metrics_addr"`
	Database    DatabaseConfig `yaml:"database"`
	Oracle      OracleConfig   `yaml:"oracle"`
}

// DatabaseConfig selects the storage backend. Path is used by the embedded
// backends, DSN only by postgres.
type DatabaseConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// OracleConfig points at the chain gateway. Dev swaps in the in-memory
// oracle, which approves nothing until told to; only useful for local
// poking and tests.
type OracleConfig struct {
	Endpoint string `yaml:"endpoint"`
	Dev      bool   `yaml:"dev"`
}

// ConfigFile wraps the config for the on-disk YAML layout.
type ConfigFile struct {
	Config ServiceConfig `yaml:"config"`
}

// RateLimitConfig is the operational tuning section loaded from INI.
type RateLimitConfig struct {
	MaxRequests   int `ini:"max_requests"`
	WindowSeconds int `ini:"window_seconds"`
}
