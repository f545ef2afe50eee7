// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "PORTAL"

func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. configs/config.production.yaml.
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	cfg, err := finish(v)
	if err != nil {
		return nil, err
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// PORTAL_BACKEND_BASE_URL overrides backend.base_url
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	// Set here rather than in applyDefaults so an explicit 0 turns tracing off.
	v.SetDefault("observability.trace_sample_rate", 0.1)
	return v
}

// bindEnvKeys makes env-only values visible to Unmarshal; AutomaticEnv alone only
// answers explicit Get calls for keys viper already knows about.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"app.environment",
		"server.host", "server.port",
		"backend.base_url", "backend.timeout", "backend.requests_per_second",
		"session.cookie_name", "session.cookie_secure", "session.strict_contracts",
		"session.ttl", "session.store_idle_ttl", "session.sweep_every",
		"redis.address", "redis.password", "redis.db",
		"logging.level", "logging.format",
		"views.registry_path",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "jobboard-portal"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15000
	}

	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 10000
	}
	if cfg.Backend.RequestsPerSecond == 0 {
		cfg.Backend.RequestsPerSecond = 50
	}
	if cfg.Backend.Burst == 0 {
		cfg.Backend.Burst = 20
	}
	cfg.Backend.BaseURL = strings.TrimSuffix(cfg.Backend.BaseURL, "/")

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "portal_sid"
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "portal:"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * 60 * 60 * 1000
	}
	if cfg.Session.StoreIdleTTL == 0 {
		cfg.Session.StoreIdleTTL = 30 * 60 * 1000
	}
	if cfg.Session.SweepEvery == 0 {
		cfg.Session.SweepEvery = 60 * 1000
	}
	if cfg.Session.StrictContracts == nil {
		strict := !cfg.App.IsProduction()
		cfg.Session.StrictContracts = &strict
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if u, err := url.Parse(cfg.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", cfg.Backend.BaseURL)
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}

	for key, ms := range map[string]int{
		"backend.timeout":        cfg.Backend.Timeout,
		"session.ttl":            cfg.Session.TTL,
		"session.store_idle_ttl": cfg.Session.StoreIdleTTL,
		"session.sweep_every":    cfg.Session.SweepEvery,
	} {
		if ms <= 0 {
			return fmt.Errorf("%s must be a positive number of milliseconds, got %d", key, ms)
		}
	}

	if cfg.Observability.TraceSampleRate < 0 || cfg.Observability.TraceSampleRate > 1 {
		return fmt.Errorf("observability.trace_sample_rate must be within [0,1]")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// Strict reports the effective contract strictness.
func (s SessionConfig) Strict() bool {
	return s.StrictContracts != nil && *s.StrictContracts
}
