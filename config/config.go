// Package config loads runtime settings for the storerate server from the
// environment (optionally seeded from a .env file).
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/storerate/storerate/util/random"
)

//go:embed version
var version string

//go:embed name
var name string

const envPrefix = "STORERATE"

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// Config is the full server configuration. Field names map to STORERATE_*
// environment variables, e.g. Listen <- STORERATE_LISTEN.
type Config struct {
	Listen         string        `envconfig:"LISTEN" default:":5000"`
	BasePath       string        `envconfig:"BASE_PATH" default:"/api"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	Domain         string        `envconfig:"DOMAIN"`
	CertFile       string        `envconfig:"CERT_FILE"`
	KeyFile        string        `envconfig:"KEY_FILE"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// AdminRespondAll lets admins answer ratings on any store.
	AdminRespondAll bool `envconfig:"ADMIN_RESPOND_ALL" default:"false"`

	AuthRatePerMinute int      `envconfig:"AUTH_RATE_PER_MINUTE" default:"30"`
	AuthRateBurst     int      `envconfig:"AUTH_RATE_BURST" default:"10"`
	CORSOrigins       []string `envconfig:"CORS_ORIGINS" default:"*"`

	DBType     DatabaseType `envconfig:"DB_TYPE" default:"sqlite"`
	DBPath     string       `envconfig:"DB_PATH"`
	PGHost     string       `envconfig:"PG_HOST" default:"localhost"`
	PGPort     int          `envconfig:"PG_PORT" default:"5432"`
	PGDatabase string       `envconfig:"PG_DATABASE" default:"storerate"`
	PGUser     string       `envconfig:"PG_USER" default:"storerate"`
	PGPassword string       `envconfig:"PG_PASSWORD"`
	PGSSLMode  string       `envconfig:"PG_SSLMODE" default:"disable"`
}

// Load reads .env (if present) and decodes the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	c := &Config{}
	if err := envconfig.Process(envPrefix, c); err != nil {
		return nil, err
	}
	c.BasePath = normalizeBasePath(c.BasePath)
	return c, nil
}

// Database builds the persistence settings from the flat env fields.
func (c *Config) Database() *DatabaseConfig {
	d := GetDefaultDatabaseConfig()
	if c.DBType != "" {
		d.Type = c.DBType
	}
	if c.DBPath != "" {
		d.SQLite.Path = c.DBPath
	}
	d.Postgres = PostgresConfig{
		Host:     c.PGHost,
		Port:     c.PGPort,
		Database: c.PGDatabase,
		Username: c.PGUser,
		Password: c.PGPassword,
		SSLMode:  c.PGSSLMode,
		TimeZone: "UTC",
	}
	return d
}

// EnsureJWTSecret fills an empty JWT secret with a random one and reports
// whether it did. Tokens signed with a generated secret do not survive a
// restart.
func (c *Config) EnsureJWTSecret() bool {
	if c.JWTSecret != "" {
		return false
	}
	c.JWTSecret = random.Seq(48)
	return true
}

// Redacted returns a printable copy with secrets masked.
func (c *Config) Redacted() Config {
	r := *c
	if r.JWTSecret != "" {
		r.JWTSecret = "******"
	}
	if r.PGPassword != "" {
		r.PGPassword = "******"
	}
	return r
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimSuffix(p, "/")
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("STORERATE_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("STORERATE_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("STORERATE_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/storerate"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("STORERATE_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}
