package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported values for STORE_DRIVER.
const (
	DriverInfluxDB = "influxdb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds the application's configuration.
type Config struct {
	Port         string        `yaml:"port"`
	StoreDriver  string        `yaml:"store_driver"`
	StoreTimeout time.Duration `yaml:"store_timeout"`
	LogLevel     string        `yaml:"log_level"`

	InfluxDBURL    string `yaml:"influxdb_url"`
	InfluxDBToken  string `yaml:"influxdb_token"`
	InfluxDBOrg    string `yaml:"influxdb_org"`
	InfluxDBBucket string `yaml:"influxdb_bucket"`
	DeviceID       string `yaml:"device_id"`

	PostgresURL string `yaml:"postgres_url"`
	SQLitePath  string `yaml:"sqlite_path"`

	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`

	// Optional integrations, disabled when empty.
	RedisAddr    string `yaml:"redis_addr"`
	MQTTBroker   string `yaml:"mqtt_broker"`
	MQTTClientID string `yaml:"mqtt_client_id"`
	MQTTTopic    string `yaml:"mqtt_topic"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:               "10000",
		StoreDriver:        DriverInfluxDB,
		StoreTimeout:       5 * time.Second,
		LogLevel:           "info",
		InfluxDBBucket:     "meteo",
		DeviceID:           "meteo-sensor",
		SQLitePath:         "meteo.db",
		MongoDatabase:      "meteo",
		MongoCollection:    "temperatures",
		MQTTClientID:       "meteo-ingest",
		MQTTTopic:          "meteo/readings",
		CORSAllowedOrigins: []string{"*"},
	}
}

// LoadConfig loads the configuration from an optional YAML file (CONFIG_FILE)
// and environment variables. Environment variables win over the file.
func LoadConfig() (Config, error) {
	//load env variables
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on system environment variables")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setFromEnv(&cfg.Port, "PORT")
	setFromEnv(&cfg.StoreDriver, "STORE_DRIVER")
	setFromEnv(&cfg.LogLevel, "LOG_LEVEL")
	setFromEnv(&cfg.InfluxDBURL, "INFLUXDB_URL")
	setFromEnv(&cfg.InfluxDBToken, "INFLUXDB_TOKEN")
	setFromEnv(&cfg.InfluxDBOrg, "INFLUXDB_ORG")
	setFromEnv(&cfg.InfluxDBBucket, "INFLUXDB_BUCKET")
	setFromEnv(&cfg.DeviceID, "DEVICE_ID")
	setFromEnv(&cfg.PostgresURL, "POSTGRES_URL")
	setFromEnv(&cfg.SQLitePath, "SQLITE_PATH")
	setFromEnv(&cfg.MongoURI, "MONGO_URI")
	setFromEnv(&cfg.MongoDatabase, "MONGO_DATABASE")
	setFromEnv(&cfg.MongoCollection, "MONGO_COLLECTION")
	setFromEnv(&cfg.RedisAddr, "REDIS_ADDR")
	setFromEnv(&cfg.MQTTBroker, "MQTT_BROKER")
	setFromEnv(&cfg.MQTTClientID, "MQTT_CLIENT_ID")
	setFromEnv(&cfg.MQTTTopic, "MQTT_TOPIC")

	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		cfg.CORSAllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("STORE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STORE_TIMEOUT %q: %w", v, err)
		}
		cfg.StoreTimeout = d
	}
	return nil
}

// Validate checks that the selected store driver has what it needs.
func (c Config) Validate() error {
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("store timeout must be positive, got %s", c.StoreTimeout)
	}
	switch c.StoreDriver {
	case DriverInfluxDB:
		if c.InfluxDBURL == "" || c.InfluxDBToken == "" || c.InfluxDBOrg == "" {
			return fmt.Errorf("InfluxDB configuration is incomplete. Please set INFLUXDB_URL, INFLUXDB_TOKEN, and INFLUXDB_ORG environment variables")
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for the postgres store")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// MQTTEnabled reports whether the MQTT ingestion transport should be started.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != "" && c.MQTTTopic != ""
}

// LogLevelValue converts LogLevel into a slog level, defaulting to info.
func (c Config) LogLevelValue() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
