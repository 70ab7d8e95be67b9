// Package database owns the connection to the relational store: opening it,
// migrating the schema, scoping transactions and classifying driver errors.
// No other package talks to storage except through the *gorm.DB handed out
// here.
package database

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/storerate/storerate/config"
	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db       *gorm.DB
	dbConfig *config.DatabaseConfig
)

func initModels() error {
	models := []any{
		&model.User{},
		&model.Store{},
		&model.Rating{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			logger.Errorf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// InitDB opens (creating if needed) the SQLite database at dbPath and
// migrates the schema.
func InitDB(dbPath string) error {
	dir := path.Dir(dbPath)
	if err := os.MkdirAll(dir, fs.ModePerm); err != nil {
		return err
	}
	cfg := config.GetDefaultDatabaseConfig()
	cfg.Type = config.DatabaseTypeSQLite
	cfg.SQLite.Path = dbPath
	return Open(cfg)
}

// Open connects using cfg and migrates the schema.
func Open(cfg *config.DatabaseConfig) error {
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectoryExists(); err != nil {
		return err
	}

	var gormLogger gormlogger.Interface
	if config.IsDebug() {
		gormLogger = gormlogger.Default
	} else {
		gormLogger = gormlogger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	var dialector gorm.Dialector
	if cfg.IsPostgreSQL() {
		dialector = postgres.Open(cfg.GetDSN())
	} else {
		dialector = sqlite.Open(cfg.GetDSN())
	}

	conn, err := gorm.Open(dialector, c)
	if err != nil {
		return err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns())
	sqlDB.SetMaxIdleConns(cfg.MaxOpenConns())
	if cfg.IsSQLite() {
		if _, err = sqlDB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			return err
		}
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	if err = sqlDB.Ping(); err != nil {
		return err
	}

	db = conn
	dbConfig = cfg
	return initModels()
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	if dbConfig != nil && dbConfig.IsSQLite() {
		if err := Checkpoint(); err != nil {
			logger.Warning("error executing checkpoint:", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	db = nil
	dbConfig = nil
	return err
}

func GetDB() *gorm.DB {
	return db
}

// IsSQLite reports whether the open database is SQLite.
func IsSQLite() bool {
	return db != nil && dbConfig != nil && dbConfig.IsSQLite()
}

// Transaction runs fn inside a transaction bound to ctx. The transaction
// commits when fn returns nil and rolls back on error or panic.
func Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint")
}

// Checkpoint flushes the SQLite write-ahead log into the main file.
func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
