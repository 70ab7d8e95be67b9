package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
)

// sqlitePragmas are applied to every pooled connection through the DSN.
const sqlitePragmas = "_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"

// DatabaseConfig selects the backing store for users, stores and ratings.
type DatabaseConfig struct {
	Type     DatabaseType   `json:"type"`
	SQLite   SQLiteConfig   `json:"sqlite"`
	Postgres PostgresConfig `json:"postgres"`
}

type SQLiteConfig struct {
	Path string `json:"path"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"-"`
	SSLMode  string `json:"sslMode"`
	TimeZone string `json:"timeZone"`
}

// GetDSN returns the driver connection string. Postgres credentials are URL
// escaped.
func (c *DatabaseConfig) GetDSN() string {
	if c.IsPostgreSQL() {
		p := c.Postgres
		u := url.URL{
			Scheme: "postgres",
			Host:   p.Host + ":" + strconv.Itoa(p.Port),
			Path:   "/" + p.Database,
		}
		if p.Password != "" {
			u.User = url.UserPassword(p.Username, p.Password)
		} else {
			u.User = url.User(p.Username)
		}
		q := url.Values{}
		q.Set("sslmode", p.SSLMode)
		if p.TimeZone != "" {
			q.Set("TimeZone", p.TimeZone)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}
	return c.SQLite.Path + "?" + sqlitePragmas
}

// MaxOpenConns is the pool bound for the backend. SQLite gets a single
// connection so write transactions queue instead of failing with SQLITE_BUSY.
func (c *DatabaseConfig) MaxOpenConns() int {
	if c.IsSQLite() {
		return 1
	}
	return 25
}

func GetDefaultDatabaseConfig() *DatabaseConfig {
	path := GetDBPath()
	if IsDebug() {
		path = filepath.Join("db", GetName()+".db")
	}
	return &DatabaseConfig{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: path},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: GetName(),
			Username: GetName(),
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
	}
}

// ValidateConfig reports every problem with the settings at once.
func (c *DatabaseConfig) ValidateConfig() error {
	var errs []error
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("sqlite: path is empty"))
		}
	case DatabaseTypePostgreSQL:
		p := c.Postgres
		if p.Host == "" {
			errs = append(errs, errors.New("postgres: host is empty"))
		}
		if p.Database == "" {
			errs = append(errs, errors.New("postgres: database name is empty"))
		}
		if p.Username == "" {
			errs = append(errs, errors.New("postgres: user is empty"))
		}
		if p.Port < 1 || p.Port > 65535 {
			errs = append(errs, fmt.Errorf("postgres: port %d out of range", p.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database type %q", c.Type))
	}
	return errors.Join(errs...)
}

func (c *DatabaseConfig) IsPostgreSQL() bool { return c.Type == DatabaseTypePostgreSQL }

func (c *DatabaseConfig) IsSQLite() bool { return c.Type == DatabaseTypeSQLite }

// EnsureDirectoryExists creates the SQLite file's parent directory.
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if !c.IsSQLite() {
		return nil
	}
	return os.MkdirAll(filepath.Dir(c.SQLite.Path), 0o750)
}
