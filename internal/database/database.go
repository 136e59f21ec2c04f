package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"aasha-server/internal/config"
)

// ErrUnavailable means the record store could not be opened or initialized.
// Nothing can proceed without it.
var ErrUnavailable = errors.New("record store unavailable")

// Open connects to the configured store and brings its schema up to date.
func Open(cfg config.DatabaseConfig, log *zap.Logger, verbose bool) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	logLevel := gormlogger.Silent
	if verbose {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, cfg.Driver, err)
	}

	applied, err := prepare(db, cfg.Driver)
	if err != nil {
		return nil, err
	}
	log.Info("record store ready",
		zap.String("driver", cfg.Driver),
		zap.Int("schemaVersion", CurrentSchemaVersion),
		zap.Int("migrationsApplied", applied))

	return db, nil
}

// prepare tunes the pool and migrates. On failure the pool is closed.
func prepare(db *gorm.DB, driver string) (int, error) {
	if driver == config.DriverSQLite {
		// One writer keeps a single caller's writes in issue order and avoids
		// "database is locked" under the HTTP server.
		sqlDB, err := db.DB()
		if err != nil {
			_ = Close(db)
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	applied, err := Migrate(db)
	if err != nil {
		_ = Close(db)
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return applied, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(cfg.DSN), nil
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}
