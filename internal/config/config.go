package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported values for STORE_DRIVER.
const (
	DriverMemory  = "memory"
	DriverSurreal = "surreal"
	DriverBadger  = "badger"
	DriverRedis   = "redis"
	DriverMongo   = "mongo"
)

// Provider exposes read-only access to the application configuration.
// Components depend on this rather than on the concrete Config struct.
type Provider interface {
	GetPort() string
	GetCORSOrigin() string
	GetStaticDir() string
	GetLogFormat() string
	GetLogLevel() string
	GetStoreDriver() string
	GetHistoryLimit() int
	GetHistoryTimeout() time.Duration
	GetSaveTimeout() time.Duration
	GetSendBuffer() int
	GetWriteTimeout() time.Duration
	GetConnectRate() float64
	GetShutdownTimeout() time.Duration
	GetSurreal() SurrealConfig
	GetBadgerPath() string
	GetRedis() RedisConfig
	GetMongo() MongoConfig
	GetTracing() TracingConfig
}

// SurrealConfig holds the SurrealDB connection settings.
type SurrealConfig struct {
	URL  string
	User string
	Pass string
	NS   string
	DB   string
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI string
	DB  string
}

// TracingConfig controls OpenTelemetry tracing of the message bus.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	ZipkinURL   string
}

// Config holds all configuration for the application.
type Config struct {
	Port            string        `envconfig:"PORT" default:"3002"`
	CORSOrigin      string        `envconfig:"CORS_ORIGIN" default:"http://localhost:5177"`
	StaticDir       string        `envconfig:"STATIC_DIR" default:"client/dist"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	StoreDriver     string        `envconfig:"STORE_DRIVER" default:"memory" validate:"oneof=memory surreal badger redis mongo"`
	HistoryLimit    int           `envconfig:"HISTORY_LIMIT" default:"50" validate:"min=1,max=50"`
	HistoryTimeout  time.Duration `envconfig:"HISTORY_TIMEOUT" default:"3s" validate:"gt=0"`
	SaveTimeout     time.Duration `envconfig:"SAVE_TIMEOUT" default:"5s" validate:"gt=0"`
	SendBuffer      int           `envconfig:"WS_SEND_BUFFER" default:"256" validate:"min=1"`
	WriteTimeout    time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	ConnectRate     float64       `envconfig:"WS_CONNECT_RATE" default:"0" validate:"min=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	BadgerPath      string        `envconfig:"BADGER_PATH" default:"data/badger"`

	SurrealURL  string `envconfig:"SURREAL_URL" default:"ws://localhost:8000/rpc"`
	SurrealUser string `envconfig:"SURREAL_USER" default:"root"`
	SurrealPass string `envconfig:"SURREAL_PASS" default:"root"`
	SurrealNS   string `envconfig:"SURREAL_NS" default:"espresso"`
	SurrealDB   string `envconfig:"SURREAL_DB" default:"chat"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0" validate:"min=0"`

	MongoURI string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDB  string `envconfig:"MONGODB_DB" default:"espresso-chat"`

	TracingEnabled     bool   `envconfig:"TRACING_ENABLED" default:"false"`
	TracingServiceName string `envconfig:"TRACING_SERVICE_NAME" default:"espresso-chat"`
	TracingZipkinURL   string `envconfig:"TRACING_ZIPKIN_URL" default:"http://localhost:9411/api/v2/spans"`
}

// New loads configuration from an optional .env file and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the settings required by the
// selected store driver.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.StoreDriver {
	case DriverSurreal:
		if c.SurrealURL == "" || c.SurrealNS == "" || c.SurrealDB == "" {
			return fmt.Errorf("invalid configuration: SURREAL_URL, SURREAL_NS and SURREAL_DB are required for the surreal driver")
		}
	case DriverBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("invalid configuration: BADGER_PATH is required for the badger driver")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("invalid configuration: REDIS_ADDR is required for the redis driver")
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDB == "" {
			return fmt.Errorf("invalid configuration: MONGODB_URI and MONGODB_DB are required for the mongo driver")
		}
	}
	return nil
}

func (c *Config) GetPort() string                   { return c.Port }
func (c *Config) GetCORSOrigin() string             { return c.CORSOrigin }
func (c *Config) GetStaticDir() string              { return c.StaticDir }
func (c *Config) GetLogFormat() string              { return c.LogFormat }
func (c *Config) GetLogLevel() string               { return c.LogLevel }
func (c *Config) GetStoreDriver() string            { return c.StoreDriver }
func (c *Config) GetHistoryLimit() int              { return c.HistoryLimit }
func (c *Config) GetHistoryTimeout() time.Duration  { return c.HistoryTimeout }
func (c *Config) GetSaveTimeout() time.Duration     { return c.SaveTimeout }
func (c *Config) GetSendBuffer() int                { return c.SendBuffer }
func (c *Config) GetWriteTimeout() time.Duration    { return c.WriteTimeout }
func (c *Config) GetConnectRate() float64           { return c.ConnectRate }
func (c *Config) GetShutdownTimeout() time.Duration { return c.ShutdownTimeout }
func (c *Config) GetBadgerPath() string             { return c.BadgerPath }

func (c *Config) GetSurreal() SurrealConfig {
	return SurrealConfig{URL: c.SurrealURL, User: c.SurrealUser, Pass: c.SurrealPass, NS: c.SurrealNS, DB: c.SurrealDB}
}

func (c *Config) GetRedis() RedisConfig {
	return RedisConfig{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

func (c *Config) GetMongo() MongoConfig {
	return MongoConfig{URI: c.MongoURI, DB: c.MongoDB}
}

func (c *Config) GetTracing() TracingConfig {
	return TracingConfig{Enabled: c.TracingEnabled, ServiceName: c.TracingServiceName, ZipkinURL: c.TracingZipkinURL}
}
