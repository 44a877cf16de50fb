package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	config, err := Load("")
	require.Nil(t, err)
	require.Equal(t, DatabaseDriverPostgres, config.Database.Driver)
	require.Equal(t, int64(1), config.Synchronizer.ConversionRateScale)
	require.Equal(t, "@every 1m", config.Synchronizer.SweepSchedule)
	require.Equal(t, 3*time.Second, config.Clock.PollInterval)
	require.Equal(t, 30*time.Second, config.StopTimeout)
	require.Equal(t, 10, config.Profiler.MutexProfileFraction)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SYNCER_SYNCHRONIZER_SWEEP_SCHEDULE", "@every 5s")
	t.Setenv("SYNCER_SYNCHRONIZER_OPERATION_TTL", "100")
	t.Setenv("SYNCER_DATABASE_DRIVER", DatabaseDriverSqlite)

	config, err := Load("")
	require.Nil(t, err)
	require.Equal(t, "@every 5s", config.Synchronizer.SweepSchedule)
	require.Equal(t, int64(100), config.Synchronizer.OperationTTL)
	require.Equal(t, DatabaseDriverSqlite, config.Database.Driver)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(`{
		"Synchronizer": {"ConversionRateScale": 1000, "InitialOwner": "owner"},
		"Gateway": {"JwtSecret": "secret"}
	}`), 0600)
	require.Nil(t, err)

	config, err := Load(path)
	require.Nil(t, err)
	require.Equal(t, int64(1000), config.Synchronizer.ConversionRateScale)
	require.Equal(t, "owner", config.Synchronizer.InitialOwner)
	require.Equal(t, "secret", config.Gateway.JwtSecret)
}

func TestValidate(t *testing.T) {
	config, err := Load("")
	require.Nil(t, err)

	config.Database.Driver = "mysql"
	require.Error(t, config.Validate())

	config.Database.Driver = DatabaseDriverSqlite
	config.Synchronizer.ConversionRateScale = 0
	require.Error(t, config.Validate())

	config.Synchronizer.ConversionRateScale = 1
	config.Synchronizer.OperationTTL = -1
	require.Error(t, config.Validate())

	config.Synchronizer.OperationTTL = 0
	require.Nil(t, config.Validate())
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
