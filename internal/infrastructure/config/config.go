package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Config is the root configuration structure for http2sql.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
}

// DatabaseConfig contains settings for the relational backend.
type DatabaseConfig struct {
	// Driver selects the database/sql driver: "mysql" or "sqlite3".
	Driver string `yaml:"driver"`

	// MySQL connection details.
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`

	// Path is the SQLite database file (sqlite3 driver only).
	Path string `yaml:"path"`

	// StaleAfter is how long (seconds) a cached handle may sit unused before
	// the pool rebuilds it. Default: 300.
	StaleAfter int `yaml:"stale_after"`

	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`

	// ConnectTimeout bounds the initial ping of a new handle (seconds).
	ConnectTimeout int `yaml:"connect_timeout"`

	// InitSchema creates the users and api_keys tables at startup if they
	// do not exist. Default: true.
	InitSchema bool `yaml:"init_schema"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains credential settings.
type SecurityConfig struct {
	APIKeys APIKeyConfig `yaml:"api_keys"`
}

// APIKeyConfig contains API key issuance settings.
type APIKeyConfig struct {
	// TTLHours is the lifetime of a key issued at sign-in. 0 issues keys
	// without an expiry.
	TTLHours int `yaml:"ttl_hours"`
}

// MQTTConfig contains MQTT broker settings for the event publisher.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings for statement telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. .env file in the working directory (if present)
//  3. YAML file values (if the file exists)
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern: HTTP2SQL_SECTION_KEY
// For example: HTTP2SQL_DB_HOST, HTTP2SQL_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	// A missing .env is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env file: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Env-only deployment
		default:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:         DriverMySQL,
			Host:           "localhost",
			Port:           3306,
			Path:           "./data/http2sql.db",
			StaleAfter:     300,
			MaxOpenConns:   10,
			MaxIdleConns:   5,
			ConnectTimeout: 5,
			InitSchema:     true,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			APIKeys: APIKeyConfig{
				TTLHours: 720,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "http2sql",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	// Database
	if v := os.Getenv("HTTP2SQL_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("HTTP2SQL_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("HTTP2SQL_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("HTTP2SQL_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("HTTP2SQL_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing HTTP2SQL_DB_PORT: %w", err)
		}
		cfg.Database.Port = port
	}
	if v := os.Getenv("HTTP2SQL_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("HTTP2SQL_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("HTTP2SQL_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("HTTP2SQL_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing HTTP2SQL_API_PORT: %w", err)
		}
		cfg.API.Port = port
	}

	// Logging
	if v := os.Getenv("HTTP2SQL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// MQTT
	if v := os.Getenv("HTTP2SQL_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}

	// InfluxDB
	if v := os.Getenv("HTTP2SQL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	return nil
}

// Validate checks the configuration for errors.
//
// All problems are collected so a single run reports every misconfiguration.
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required for the mysql driver")
		}
		if c.Database.Name == "" {
			errs = append(errs, "database.name is required for the mysql driver (set HTTP2SQL_DB_NAME)")
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required for the mysql driver (set HTTP2SQL_DB_USER)")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			errs = append(errs, "database.port must be between 1 and 65535")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite3 driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (use mysql or sqlite3)", c.Database.Driver))
	}

	if c.Database.StaleAfter <= 0 {
		errs = append(errs, "database.stale_after must be positive")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Security.APIKeys.TTLHours < 0 {
		errs = append(errs, "security.api_keys.ttl_hours must not be negative")
	}

	if c.MQTT.Enabled && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetStaleAfter returns the pool staleness window as a Duration.
func (c *Config) GetStaleAfter() time.Duration {
	return time.Duration(c.Database.StaleAfter) * time.Second
}

// GetAPIKeyTTL returns the lifetime of issued API keys. Zero means no expiry.
func (c *Config) GetAPIKeyTTL() time.Duration {
	return time.Duration(c.Security.APIKeys.TTLHours) * time.Hour
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
