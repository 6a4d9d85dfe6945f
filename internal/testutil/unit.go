package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprecord/internal/config"
)

// MemoryUnit returns a persistence unit over a private in-memory SQLite
// database. Callers must import the sqlite adapter.
func MemoryUnit(t testing.TB) *config.Unit {
	t.Helper()
	return &config.Unit{
		Name:          t.Name(),
		ConnectString: "sqlite::memory:",
		MaxSessions:   4,
	}
}

// FileUnit returns a persistence unit over a SQLite file in a temp dir.
func FileUnit(t testing.TB) *config.Unit {
	t.Helper()
	return &config.Unit{
		Name:          t.Name(),
		ConnectString: "sqlite:" + filepath.Join(t.TempDir(), "leaprecord.db"),
		MaxSessions:   4,
	}
}

// WriteMigrations writes goose migrations (file name → SQL) to a temp dir
// and returns its path.
func WriteMigrations(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

// AccountMigration creates the ACCOUNT table used across tests.
const AccountMigration = `-- +goose Up
CREATE TABLE account (
	id INTEGER PRIMARY KEY,
	name VARCHAR(64),
	balance DECIMAL(12,2)
);

-- +goose Down
DROP TABLE account;
`
