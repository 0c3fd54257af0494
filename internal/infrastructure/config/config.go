package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultServerURL is the fallback remote endpoint used when no server URL
// has been configured or persisted. It can be replaced at runtime through
// the session store's SaveEndpoint.
const DefaultServerURL = "https://smart-home-x8tm.onrender.com"

// Config is the root configuration structure for Gray Logic Remote.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains remote service settings.
type ServerConfig struct {
	// URL is the initial base endpoint of the remote service. It seeds the
	// session store on first run; afterwards the persisted endpoint wins.
	URL string `yaml:"url"`

	// RequestTimeout is the per-call HTTP timeout in seconds.
	RequestTimeout int `yaml:"request_timeout"`

	// Routes allows individual route templates to be overridden when the
	// remote service is deployed behind a non-standard path prefix.
	Routes RoutesConfig `yaml:"routes"`
}

// RoutesConfig contains route template overrides for the remote API.
// Empty fields fall back to the gateway's defaults. Templates use
// {home_id}, {room_id}, {device_id} and {automation_id} placeholders.
type RoutesConfig struct {
	Login            string `yaml:"login"`
	Register         string `yaml:"register"`
	Health           string `yaml:"health"`
	Homes            string `yaml:"homes"`
	Rooms            string `yaml:"rooms"`
	Devices          string `yaml:"devices"`
	Device           string `yaml:"device"`
	DeviceAction     string `yaml:"device_action"`
	PushToken        string `yaml:"push_token"`
	Notifications    string `yaml:"notifications"`
	Automations      string `yaml:"automations"`
	AutomationEnable string `yaml:"automation_enable"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// SyncConfig contains settings for the hierarchical sync chain.
type SyncConfig struct {
	// ChainTimeout bounds one complete loadAll chain in seconds.
	ChainTimeout int `yaml:"chain_timeout"`

	// HistoryEnabled records observed device state changes locally.
	HistoryEnabled bool `yaml:"history_enabled"`
}

// MQTTConfig contains MQTT broker connection settings for live device state.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	BaseTopic string              `yaml:"base_topic"`
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
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains settings for the optional telemetry mirror.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GLREMOTE_SECTION_KEY
// For example: GLREMOTE_DATABASE_PATH, GLREMOTE_SERVER_URL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            DefaultServerURL,
			RequestTimeout: 15,
		},
		Database: DatabaseConfig{
			Path:        "./data/glremote.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Sync: SyncConfig{
			ChainTimeout:   60,
			HistoryEnabled: true,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "glremote",
			},
			QoS:       1,
			BaseTopic: "smart_home/demo",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GLREMOTE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("GLREMOTE_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("GLREMOTE_SERVER_REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RequestTimeout = n
		}
	}

	// Database
	if v := os.Getenv("GLREMOTE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("GLREMOTE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GLREMOTE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GLREMOTE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("GLREMOTE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Server validation: the URL must parse and carry a scheme so the
	// gateway can fail fast instead of issuing requests to garbage.
	if c.Server.URL == "" {
		errs = append(errs, "server.url is required")
	} else if u, err := url.Parse(c.Server.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "server.url must be an absolute http(s) URL")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// Sync validation
	if c.Sync.ChainTimeout <= 0 {
		errs = append(errs, "sync.chain_timeout must be positive")
	}

	// MQTT validation (only when the receiver is enabled)
	if c.MQTT.Enabled {
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.BaseTopic == "" {
			errs = append(errs, "mqtt.base_topic is required when mqtt is enabled")
		}
	}

	// InfluxDB validation (only when the mirror is enabled)
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetRequestTimeout returns the per-call HTTP timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// GetChainTimeout returns the loadAll chain timeout as a Duration.
func (c *Config) GetChainTimeout() time.Duration {
	return time.Duration(c.Sync.ChainTimeout) * time.Second
}
