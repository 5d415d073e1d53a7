package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookmemo/internal/entities"
)

// dsnOptions enables WAL and makes concurrent writers wait instead of
// failing with SQLITE_BUSY.
const dsnOptions = "?_journal=WAL&_timeout=5000&_busy_timeout=5000"

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (creating if needed) the sqlite file at dbPath and
// migrates the annotation tables.
func NewDatabase(dbPath string, log *zap.Logger) (*Database, error) {
	return open(dbPath, logger.Default.LogMode(logger.Warn), log)
}

// NewSilentDatabase is NewDatabase without gorm's SQL logging. Used by tests
// and CLI commands.
func NewSilentDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Default.LogMode(logger.Silent), zap.NewNop())
}

func open(dbPath string, gormLogger logger.Interface, log *zap.Logger) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+dsnOptions), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	// Single writer: every statement is serialized on one connection.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&entities.Summary{},
		&entities.HighlightMemo{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database initialized", zap.String("path", dbPath))

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the underlying connection. Used by the health endpoint.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
