package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("RETURN_WINDOW_DAYS", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30, cfg.ReturnWindowDays)
	assert.Equal(t, 500*time.Millisecond, cfg.ChangePollInterval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CHANGE_POLL_INTERVAL", "-1s")
	t.Setenv("RETURN_WINDOW_DAYS", "14")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example.com/")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.ChangePollInterval)
	assert.Equal(t, 14, cfg.ReturnWindowDays)
	assert.Equal(t, "https://shop.example.com", cfg.PublicBaseURL)
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(&Config{DBDriver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestInitDBSqlite(t *testing.T) {
	db, err := InitDB(&Config{DBDriver: "sqlite", DBDSN: "file::memory:"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Close())
}

func TestStoreLocation(t *testing.T) {
	t.Setenv("STORE_TIMEZONE", "")
	loc, err := Load().Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = (&Config{StoreTimezone: "UTC"}).Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = (&Config{StoreTimezone: "Mars/Olympus"}).Location()
	assert.ErrorContains(t, err, "STORE_TIMEZONE")
}
