// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Backend       BackendConfig       `mapstructure:"backend"`
	Session       SessionConfig       `mapstructure:"session"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Views         ViewsConfig         `mapstructure:"views"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// IsProduction reports whether the portal runs with production semantics
// (lenient contract checks, JSON logs).
func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// BackendConfig points the gateway at the job board REST API.
type BackendConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	Timeout           int     `mapstructure:"timeout"` // milliseconds
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// SessionConfig controls browser sessions and the per-session store cache.
type SessionConfig struct {
	CookieName   string `mapstructure:"cookie_name"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
	KeyPrefix    string `mapstructure:"key_prefix"`
	TTL          int    `mapstructure:"ttl"`            // milliseconds
	StoreIdleTTL int    `mapstructure:"store_idle_ttl"` // milliseconds
	SweepEvery   int    `mapstructure:"sweep_every"`    // milliseconds
	// StrictContracts makes payload contract violations fail fast instead of
	// being logged and skipped. Defaults to true outside production.
	StrictContracts *bool `mapstructure:"strict_contracts"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ViewsConfig optionally overrides the embedded view registry.
type ViewsConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName     string  `mapstructure:"service_name"`
	TraceSampleRate float64 `mapstructure:"trace_sample_rate"`
}
