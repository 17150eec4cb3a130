package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Generator providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultPort        = 3000
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultTemperature = 0.6
	DefaultTimeout     = 60 * time.Second
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Generator GeneratorConfig `yaml:"generator"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type GeneratorConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Temperature *float64      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// MaxConns caps the audit log pool; 0 keeps the pgxpool default.
	MaxConns int32 `yaml:"max_conns"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TemperatureOrDefault returns the configured sampling temperature.
func (g GeneratorConfig) TemperatureOrDefault() float64 {
	if g.Temperature == nil {
		return DefaultTemperature
	}
	return *g.Temperature
}

// Enabled reports whether a database is configured. Without one the
// generation audit log is off.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads config from an optional YAML file, then applies environment
// variable overrides. A .env file in the working directory, if present, is
// loaded into the environment first without replacing variables already set.
// An empty path skips the file.
//
// Env vars use the prefix WODGEN_ and underscore-separated paths:
//
//	WODGEN_SERVER_HOST, WODGEN_SERVER_PORT (or PORT),
//	WODGEN_GENERATOR_PROVIDER, WODGEN_GENERATOR_MODEL,
//	WODGEN_GENERATOR_API_KEY (or OPENAI_API_KEY / GEMINI_API_KEY),
//	WODGEN_GENERATOR_BASE_URL, WODGEN_GENERATOR_TEMPERATURE,
//	WODGEN_GENERATOR_TIMEOUT, WODGEN_GENERATOR_MAX_RETRIES,
//	WODGEN_DB_HOST, WODGEN_DB_PORT, WODGEN_DB_NAME,
//	WODGEN_DB_USER, WODGEN_DB_PASSWORD, WODGEN_DB_SSLMODE,
//	WODGEN_DB_MAX_CONNS,
//	WODGEN_AUTH_API_KEY,
//	WODGEN_TAILSCALE_ENABLED, WODGEN_TAILSCALE_HOSTNAME, WODGEN_TAILSCALE_STATE_DIR,
//	WODGEN_LOG_LEVEL
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WODGEN_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := firstEnv("WODGEN_SERVER_PORT", "PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("WODGEN_GENERATOR_PROVIDER"); v != "" {
		cfg.Generator.Provider = v
	}
	if v := os.Getenv("WODGEN_GENERATOR_MODEL"); v != "" {
		cfg.Generator.Model = v
	}
	if v := os.Getenv("WODGEN_GENERATOR_API_KEY"); v != "" {
		cfg.Generator.APIKey = v
	}
	if v := os.Getenv("WODGEN_GENERATOR_BASE_URL"); v != "" {
		cfg.Generator.BaseURL = v
	}
	if v := os.Getenv("WODGEN_GENERATOR_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Generator.Temperature = &t
		}
	}
	if v := os.Getenv("WODGEN_GENERATOR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Generator.Timeout = d
		}
	}
	if v := os.Getenv("WODGEN_GENERATOR_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Generator.MaxRetries = n
		}
	}

	if v := os.Getenv("WODGEN_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("WODGEN_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("WODGEN_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("WODGEN_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("WODGEN_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("WODGEN_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("WODGEN_DB_MAX_CONNS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			cfg.Database.MaxConns = int32(n)
		}
	}

	if v := os.Getenv("WODGEN_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}

	if v := os.Getenv("WODGEN_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("WODGEN_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("WODGEN_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}

	if v := os.Getenv("WODGEN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = ProviderOpenAI
	}
	if cfg.Generator.Model == "" {
		switch cfg.Generator.Provider {
		case ProviderGemini:
			cfg.Generator.Model = DefaultGeminiModel
		default:
			cfg.Generator.Model = DefaultOpenAIModel
		}
	}
	if cfg.Generator.APIKey == "" {
		switch cfg.Generator.Provider {
		case ProviderGemini:
			cfg.Generator.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		default:
			cfg.Generator.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = DefaultTimeout
	}
	if cfg.Database.Enabled() && cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Generator.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("generator.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.Generator.Provider)
	}
	if c.Generator.APIKey == "" {
		return fmt.Errorf("generator.api_key is required")
	}
	if t := c.Generator.TemperatureOrDefault(); t < 0 || t > 2 {
		return fmt.Errorf("generator.temperature must be between 0 and 2, got %g", t)
	}
	if c.Generator.MaxRetries < 0 {
		return fmt.Errorf("generator.max_retries must not be negative")
	}
	if c.Database.Enabled() {
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
		if c.Database.MaxConns < 0 {
			return fmt.Errorf("database.max_conns must not be negative")
		}
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
