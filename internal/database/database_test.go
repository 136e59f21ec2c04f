package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aasha-server/internal/config"
	"aasha-server/internal/models"
)

func sqliteConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "aasha.db"),
	}
}

func TestOpenCreatesSchemaOnce(t *testing.T) {
	cfg := sqliteConfig(t)

	db, err := Open(cfg, nil, false)
	require.NoError(t, err)

	version, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	for _, table := range []any{&models.Patient{}, &models.Screening{}, &models.Setting{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Screening{}, "PatientID"))
	assert.True(t, db.Migrator().HasIndex(&models.Screening{}, "RiskLevel"))
	assert.True(t, db.Migrator().HasIndex(&models.Patient{}, "Name"))
	require.NoError(t, Close(db))

	// Reopening is a no-op.
	db, err = Open(cfg, nil, false)
	require.NoError(t, err)
	applied, err := Migrate(db)
	require.NoError(t, err)
	assert.Zero(t, applied)

	var count int64
	require.NoError(t, db.Model(&SchemaMigration{}).Count(&count).Error)
	assert.Equal(t, int64(len(migrations)), count)
	require.NoError(t, Close(db))
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	cfg := sqliteConfig(t)

	db, err := Open(cfg, nil, false)
	require.NoError(t, err)
	require.NoError(t, db.Create(&SchemaMigration{
		Version:   CurrentSchemaVersion + 1,
		Name:      "from the future",
		AppliedAt: time.Now().UTC(),
	}).Error)
	require.NoError(t, Close(db))

	_, err = Open(cfg, nil, false)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestFailedMigrationClosesPool(t *testing.T) {
	db, err := Open(sqliteConfig(t), nil, false)
	require.NoError(t, err)
	require.NoError(t, db.Create(&SchemaMigration{
		Version:   CurrentSchemaVersion + 1,
		Name:      "from the future",
		AppliedAt: time.Now().UTC(),
	}).Error)

	_, err = prepare(db, config.DriverSQLite)
	require.ErrorIs(t, err, ErrSchemaTooNew)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, nil, false)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenUnwritablePath(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "missing", "dir", "aasha.db"),
	}
	_, err := Open(cfg, nil, false)
	require.ErrorIs(t, err, ErrUnavailable)
}
