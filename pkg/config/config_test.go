package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the duration of the test; t.Setenv restores it afterwards
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "SERVER_PORT", "STORAGE_DRIVER", "DATA_PATH", "BASE_URL", "SHUTDOWN_TIMEOUT", "METRICS_PREFIX")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "data/products.json", cfg.DataPath())
	assert.Equal(t, "catalog", cfg.Metrics.Prefix)
}

func TestLoadFallsBackToBaseURL(t *testing.T) {
	unsetEnv(t, "STORAGE_DRIVER", "DATA_PATH")
	t.Setenv("BASE_URL", "/srv/products.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/products.json", cfg.Storage.Path)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	unsetEnv(t, "STORAGE_DRIVER")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("DB_MAX_IDLE_CONNS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10, cfg.DB.MaxIdleConns)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", DriverSQLite)
	t.Setenv("SQLITE_PATH", "/tmp/catalog.db")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 7, cfg.DB.MaxOpenConns)
	assert.Equal(t, "/tmp/catalog.db", cfg.DataPath())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported STORAGE_DRIVER")
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{Host: "db", Port: "5433", User: "u", Password: "p", Name: "catalog", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=catalog sslmode=disable", db.GetDSN())
}
