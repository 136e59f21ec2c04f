package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"aasha-server/internal/models"
)

// Schema versions:
// v1: patients, screenings, settings with their lookup indexes
const CurrentSchemaVersion = 1

// ErrSchemaTooNew is returned when the store was written by a newer release.
var ErrSchemaTooNew = errors.New("schema version is newer than this release")

// SchemaMigration records one applied migration.
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time
}

type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// migrations must stay ordered by version; future schema changes go here.
var migrations = []migration{
	{
		version: 1,
		name:    "create patients, screenings and settings",
		up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.Patient{},
				&models.Screening{},
				&models.Setting{},
			)
		},
	},
}

// Migrate applies every migration above the stored version, each in its own
// transaction. It returns how many ran; an up-to-date store is a no-op.
func Migrate(db *gorm.DB) (int, error) {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return 0, fmt.Errorf("failed to prepare schema_migrations: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return 0, err
	}
	if current > CurrentSchemaVersion {
		return 0, fmt.Errorf("%w: store is v%d, release supports v%d", ErrSchemaTooNew, current, CurrentSchemaVersion)
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   m.version,
				Name:      m.name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration v%d (%s) failed: %w", m.version, m.name, err)
		}
		applied++
	}
	return applied, nil
}

// SchemaVersion returns the highest applied migration, or 0 for a new store.
func SchemaVersion(db *gorm.DB) (int, error) {
	var version int
	err := db.Model(&SchemaMigration{}).Select("COALESCE(MAX(version), 0)").Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
