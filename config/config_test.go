package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORERATE_DEBUG", "false")
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", c.Listen)
	assert.Equal(t, "/api", c.BasePath)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, DatabaseTypeSQLite, c.DBType)
	assert.False(t, c.AdminRespondAll)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORERATE_BASE_PATH", "v1/")
	t.Setenv("STORERATE_TOKEN_TTL", "1h")
	t.Setenv("STORERATE_DB_TYPE", "postgres")
	t.Setenv("STORERATE_PG_HOST", "db")
	t.Setenv("STORERATE_PG_PASSWORD", "pw")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/v1", c.BasePath)
	assert.Equal(t, time.Hour, c.TokenTTL)

	d := c.Database()
	assert.True(t, d.IsPostgreSQL())
	assert.NoError(t, d.ValidateConfig())
	assert.Equal(t, "postgres://storerate:pw@db:5432/storerate?TimeZone=UTC&sslmode=disable", d.GetDSN())
	assert.Equal(t, 25, d.MaxOpenConns())
}

func TestRedacted(t *testing.T) {
	c := &Config{JWTSecret: "s3cret", PGPassword: "pw"}
	r := c.Redacted()
	assert.Equal(t, "******", r.JWTSecret)
	assert.Equal(t, "******", r.PGPassword)
	assert.Equal(t, "s3cret", c.JWTSecret)
}

func TestEnsureJWTSecret(t *testing.T) {
	c := &Config{}
	assert.True(t, c.EnsureJWTSecret())
	assert.Len(t, c.JWTSecret, 48)
	generated := c.JWTSecret
	assert.False(t, c.EnsureJWTSecret())
	assert.Equal(t, generated, c.JWTSecret)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DatabaseConfig
		wantErr bool
	}{
		{"sqlite ok", DatabaseConfig{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: "x.db"}}, false},
		{"sqlite empty path", DatabaseConfig{Type: DatabaseTypeSQLite}, true},
		{"postgres bad port", DatabaseConfig{Type: DatabaseTypePostgreSQL, Postgres: PostgresConfig{Host: "h", Database: "d", Username: "u", Port: 0}}, true},
		{"unknown", DatabaseConfig{Type: "mysql"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateConfig()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	d := DatabaseConfig{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: "/tmp/a.db"}}
	assert.Contains(t, d.GetDSN(), "_foreign_keys=on")
	assert.Equal(t, 1, d.MaxOpenConns())
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	d := DatabaseConfig{Type: DatabaseTypePostgreSQL, Postgres: PostgresConfig{
		Host: "db", Port: 5432, Database: "rates", Username: "app", Password: "p@ss word", SSLMode: "require",
	}}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/rates?sslmode=require", d.GetDSN())
}

func TestValidateConfigReportsAllProblems(t *testing.T) {
	d := DatabaseConfig{Type: DatabaseTypePostgreSQL}
	err := d.ValidateConfig()
	require.Error(t, err)
	for _, want := range []string{"host", "database name", "user", "port"} {
		assert.Contains(t, err.Error(), want)
	}
}
