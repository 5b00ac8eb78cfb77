/*
config.go - Runtime configuration

PURPOSE:
  Collects server settings from, in increasing precedence: built-in
  defaults, an optional YAML file, environment variables, and command-line
  flags that were explicitly set.

YAML FILE (selected by -config or TIPS_CONFIG):
  port: 8080
  allowed_origins: ["http://localhost:5173"]
  shutdown_timeout: 30s
  store:
    driver: sqlite          # memory | sqlite | postgres | mongo
    sqlite_path: tips.db
    postgres_dsn: postgres://tips@localhost/tips
    mongo_uri: mongodb://localhost:27017
    mongo_database: tips
    mongo_collection: templates
  auth:
    jwt_secret: change-me
    jwt_issuer: tips-auth
    jwt_audience: tip-engine

ENVIRONMENT:
  PORT, STORE_DRIVER, SQLITE_PATH, DATABASE_URL, MONGO_URI, MONGO_DB,
  MONGO_COLLECTION, AUTH_JWT_SECRET, AUTH_JWT_ISSUER, AUTH_JWT_AUDIENCE,
  API_ALLOWED_ORIGINS (comma separated), SHUTDOWN_TIMEOUT

FLAGS:
  -config  YAML file path
  -port    HTTP server port
  -store   Store driver
  -db      SQLite database path; ":memory:" for an in-memory database

SEE ALSO:
  - cmd/server/main.go: Consumes Config
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type StoreConfig struct {
	Driver          string `yaml:"driver"`
	SQLitePath      string `yaml:"sqlite_path"`
	PostgresDSN     string `yaml:"postgres_dsn"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
}

// AuthConfig configures bearer-token verification. An empty secret
// disables the template routes.
type AuthConfig struct {
	Secret   string `yaml:"jwt_secret"`
	Issuer   string `yaml:"jwt_issuer"`
	Audience string `yaml:"jwt_audience"`
}

// Config holds runtime configuration shared across the server.
type Config struct {
	Port            int           `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Store           StoreConfig   `yaml:"store"`
	Auth            AuthConfig    `yaml:"auth"`

	ServerLog *log.Logger `yaml:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Port:            8080,
		AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
		ShutdownTimeout: 30 * time.Second,
		Store: StoreConfig{
			Driver:          DriverSQLite,
			SQLitePath:      "tips.db",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "tips",
			MongoCollection: "templates",
		},
		Auth: AuthConfig{
			Issuer: "tips-auth",
		},
	}
}

// Load builds the configuration for the server binary. args excludes the
// program name.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", os.Getenv("TIPS_CONFIG"), "YAML config file")
	port := fs.Int("port", 0, "HTTP server port")
	driver := fs.String("store", "", "Store driver: memory, sqlite, postgres or mongo")
	dbPath := fs.String("db", "", "SQLite database path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *configPath != "" {
		if err := cfg.loadFile(*configPath); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "store":
			cfg.Store.Driver = *driver
		case "db":
			cfg.Store.SQLitePath = *dbPath
		}
	})

	cfg.ServerLog = log.New(os.Stdout, "[tips] ", log.LstdFlags|log.LUTC)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PORT: %w", err)
		}
		c.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("SHUTDOWN_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = d
	}

	c.Store.Driver = envOrDefault("STORE_DRIVER", c.Store.Driver)
	c.Store.SQLitePath = envOrDefault("SQLITE_PATH", c.Store.SQLitePath)
	c.Store.PostgresDSN = envOrDefault("DATABASE_URL", c.Store.PostgresDSN)
	c.Store.MongoURI = envOrDefault("MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDatabase = envOrDefault("MONGO_DB", c.Store.MongoDatabase)
	c.Store.MongoCollection = envOrDefault("MONGO_COLLECTION", c.Store.MongoCollection)

	c.Auth.Secret = envOrDefault("AUTH_JWT_SECRET", c.Auth.Secret)
	c.Auth.Issuer = envOrDefault("AUTH_JWT_ISSUER", c.Auth.Issuer)
	c.Auth.Audience = envOrDefault("AUTH_JWT_AUDIENCE", c.Auth.Audience)

	c.AllowedOrigins = parseList("API_ALLOWED_ORIGINS", c.AllowedOrigins)
	return nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("config: sqlite store requires a database path")
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("config: postgres store requires DATABASE_URL")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" || c.Store.MongoCollection == "" {
			return errors.New("config: mongo store requires uri, database and collection")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("config: shutdown timeout must be positive")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
