package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rongwang/stonks/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, repository.DialectPostgres, cfg.Database.Dialect())
	assert.Equal(t, 10, cfg.Ledger.MaxTxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Ledger.AttemptTimeout)
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=password dbname=stonks sslmode=disable",
		cfg.Database.GetDSN())
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", "/tmp/ledger.db")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LEDGER_ATTEMPT_TIMEOUT", "250ms")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Ledger.AttemptTimeout)
	assert.Equal(t, "file:/tmp/ledger.db?_txlock=immediate&_busy_timeout=5000&_loc=UTC", cfg.Database.GetDSN())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stonks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: cockroach
  port: 26257
ledger:
  max_tx_attempts: 3
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, repository.DialectCockroach, cfg.Database.Dialect())
	assert.Equal(t, 26257, cfg.Database.Port)
	assert.Equal(t, 3, cfg.Ledger.MaxTxAttempts)
	assert.Equal(t, path, cfg.ConfigPath)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Driver: string(repository.DialectSQLite),
		Path:   filepath.Join(t.TempDir(), "m.db"),
	}}
	require.NoError(t, RunMigrations(cfg))
	require.NoError(t, RunMigrations(cfg))

	db, err := SetupDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM delta_types"))
	assert.Equal(t, 3, n)
}
