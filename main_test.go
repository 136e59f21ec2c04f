package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestMigrateAndStatsCommands(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "aasha.db"))
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "error")

	assert.Contains(t, execute(t, "migrate"), "schema version 1 (sqlite)")

	out := execute(t, "stats")
	assert.Contains(t, out, "total patients:   0")
	assert.Contains(t, out, "screenings:       0")
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	rootCmd.SetArgs([]string{"stats"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	assert.Error(t, rootCmd.Execute())
}
