// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DatabaseMongo  = "mongo"
	DatabaseMemory = "memory"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type           string        `yaml:"type"` // "mongo" or "memory"
	URI            string        `yaml:"uri"`
	Name           string        `yaml:"name"`
	Transactions   bool          `yaml:"transactions"` // wrap cascades in multi-document transactions (replica set required)
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Config holds the complete application configuration
type Config struct {
	Server           *ServerConfig   `yaml:"server"`
	Database         *DatabaseConfig `yaml:"database"`
	Log              *LogConfig      `yaml:"log"`
	AllowedOrigins   []string        `yaml:"allowed_origins"`
	ReconcileOnStart bool            `yaml:"reconcile_on_start"`
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:            8080,
		Host:            "0.0.0.0",
		MetricsEnabled:  true,
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type:           DatabaseMongo,
		URI:            "mongodb://127.0.0.1:27017",
		Name:           "NetLibrarium",
		ConnectTimeout: 10 * time.Second,
	}
}

// DefaultLogConfig provides default logging settings
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level: "info",
	}
}

// Default returns the complete configuration with defaults only.
func Default() *Config {
	return &Config{
		Server:         DefaultConfig(),
		Database:       DefaultDatabaseConfig(),
		Log:            DefaultLogConfig(),
		AllowedOrigins: []string{"*"},
	}
}

// LoadConfig loads configuration from an optional YAML file, then environment
// variables (including a .env file), and applies defaults for anything unset.
func LoadConfig() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envLocations := []string{
		".env",       // Current directory
		"../../.env", // Project root when running from cmd/engine
		filepath.Join(os.Getenv("GOPATH"), "src/netlibrarium/.env"),
	}
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile overlays settings from a YAML file onto cfg.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	if portStr := os.Getenv("PORT"); portStr != "" {
		if c.Server.Port, err = strconv.Atoi(portStr); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		c.Server.MetricsEnabled = v == "true"
	}
	if err = durationFromEnv("REQUEST_TIMEOUT", &c.Server.RequestTimeout); err != nil {
		return err
	}
	if err = durationFromEnv("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout); err != nil {
		return err
	}

	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		c.Database.Type = strings.ToLower(dbType)
	}
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		c.Database.URI = uri
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		c.Database.Name = name
	}
	if v := os.Getenv("MONGODB_TRANSACTIONS"); v != "" {
		c.Database.Transactions = v == "true"
	}
	if err = durationFromEnv("DB_CONNECT_TIMEOUT", &c.Database.ConnectTimeout); err != nil {
		return err
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		c.Log.Pretty = v == "true"
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitAndTrim(origins)
	}
	if v := os.Getenv("RECONCILE_ON_START"); v != "" {
		c.ReconcileOnStart = v == "true"
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	switch c.Database.Type {
	case DatabaseMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when DB_TYPE is %s", DatabaseMongo)
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required when DB_TYPE is %s", DatabaseMongo)
		}
	case DatabaseMemory:
	default:
		return fmt.Errorf("unsupported DB_TYPE %q (want %s or %s)", c.Database.Type, DatabaseMongo, DatabaseMemory)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func durationFromEnv(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
