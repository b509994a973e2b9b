package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Agro Sirius Core.
// Values come from YAML and can be overridden by environment variables.
type Config struct {
	Farm     FarmConfig     `yaml:"farm"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Workbook WorkbookConfig `yaml:"workbook"`
	Publish  PublishConfig  `yaml:"publish"`
}

// FarmConfig describes the farm being mapped.
type FarmConfig struct {
	ID   string    `yaml:"id"`
	Name string    `yaml:"name"`
	Map  MapConfig `yaml:"map"`

	// StrictNames restricts plot definitions to BlockOptions and SectorOptions.
	StrictNames   bool     `yaml:"strict_names"`
	BlockOptions  []string `yaml:"block_options"`
	SectorOptions []string `yaml:"sector_options"`
}

// MapConfig holds the default viewport sent to map clients.
type MapConfig struct {
	CenterLat float64 `yaml:"center_lat"`
	CenterLon float64 `yaml:"center_lon"`
	Zoom      int     `yaml:"zoom"`
	MinZoom   int     `yaml:"min_zoom"`
	MaxZoom   int     `yaml:"max_zoom"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
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

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings, in seconds.
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

// InfluxDBConfig contains InfluxDB connection settings.
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

// WorkbookConfig points the service at a spreadsheet instead of SQLite.
//
// When Enabled, plot boundaries and sowing events are read from (and
// boundary definitions written to) the workbook at Path.
type WorkbookConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	EventsSheet   string `yaml:"events_sheet"`
	BoundarySheet string `yaml:"boundary_sheet"`
}

// PublishConfig controls the periodic summary push to MQTT and InfluxDB.
type PublishConfig struct {
	Interval int `yaml:"interval"` // seconds, 0 disables
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. A .env file next to the working directory, if present
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern: AGROSIRIUS_SECTION_KEY
// For example: AGROSIRIUS_DATABASE_PATH, AGROSIRIUS_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
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
		Farm: FarmConfig{
			ID:   "farm-001",
			Name: "Agro Sirius",
			Map: MapConfig{
				CenterLat: 4.7277783,
				CenterLon: -74.07215,
				Zoom:      13,
				MinZoom:   5,
				MaxZoom:   18,
			},
			BlockOptions:  numberedOptions("Lote", 10),
			SectorOptions: letteredOptions("Sector", 10),
		},
		Database: DatabaseConfig{
			Path:        "./data/agrosirius.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "agrosirius-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
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
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Workbook: WorkbookConfig{
			EventsSheet:   "Sheet1",
			BoundarySheet: "Lotes Definidos",
		},
		Publish: PublishConfig{
			Interval: 60,
		},
	}
}

func numberedOptions(prefix string, n int) []string {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, prefix+" "+strconv.Itoa(i))
	}
	return out
}

func letteredOptions(prefix string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, prefix+" "+string(rune('A'+i)))
	}
	return out
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGROSIRIUS_FARM_ID"); v != "" {
		cfg.Farm.ID = v
	}

	if v := os.Getenv("AGROSIRIUS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("AGROSIRIUS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("AGROSIRIUS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("AGROSIRIUS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("AGROSIRIUS_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("AGROSIRIUS_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("AGROSIRIUS_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("AGROSIRIUS_WORKBOOK_PATH"); v != "" {
		cfg.Workbook.Path = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Farm.ID == "" {
		errs = append(errs, "farm.id is required")
	}
	if c.Farm.StrictNames && (len(c.Farm.BlockOptions) == 0 || len(c.Farm.SectorOptions) == 0) {
		errs = append(errs, "farm.strict_names requires block_options and sector_options")
	}
	if c.Farm.Map.CenterLat < -90 || c.Farm.Map.CenterLat > 90 {
		errs = append(errs, "farm.map.center_lat must be between -90 and 90")
	}
	if c.Farm.Map.CenterLon < -180 || c.Farm.Map.CenterLon > 180 {
		errs = append(errs, "farm.map.center_lon must be between -180 and 180")
	}

	if !c.Workbook.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Workbook.Enabled && c.Workbook.Path == "" {
		errs = append(errs, "workbook.path is required when workbook.enabled is set")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Publish.Interval < 0 {
		errs = append(errs, "publish.interval cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
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

// GetPublishInterval returns the summary publish interval as a Duration.
func (c *Config) GetPublishInterval() time.Duration {
	return time.Duration(c.Publish.Interval) * time.Second
}
