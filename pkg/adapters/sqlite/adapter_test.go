package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprecord/internal/testutil"
	"github.com/leapstack-labs/leaprecord/pkg/adapter"
)

func connectMemory(t *testing.T) *Adapter {
	t.Helper()
	adp := New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(context.Background(), adapter.Config{Type: "sqlite", Path: ":memory:"}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "empty path is in-memory",
			setupPath: func(_ *testing.T) string {
				return ""
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "test.db")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			adp := New(nil)

			dbPath := tt.setupPath(t)
			require.NoError(t, adp.Connect(ctx, adapter.Config{Path: dbPath, PoolSize: 2}))
			defer func() { _ = adp.Close() }()

			assert.True(t, adp.IsConnected())
			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	_, err := adp.Exec(ctx, "SELECT 1")
	assert.ErrorContains(t, err, "not established")

	_, err = adp.Query(ctx, "SELECT 1")
	assert.ErrorContains(t, err, "not established")

	_, err = adp.GetTableMetadata(ctx, "account")
	assert.ErrorContains(t, err, "not established")
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	ctx := context.Background()
	adp := connectMemory(t)

	_, err := adp.Exec(ctx, `CREATE TABLE account (
		id INTEGER PRIMARY KEY,
		name VARCHAR(64),
		balance DECIMAL(12,2) NOT NULL
	)`)
	require.NoError(t, err)

	meta, err := adp.GetTableMetadata(ctx, "account")
	require.NoError(t, err)

	assert.Equal(t, "main", meta.Schema)
	assert.Equal(t, "account", meta.Name)
	require.Len(t, meta.Columns, 3)

	assert.Equal(t, adapter.Column{Name: "id", Type: "INTEGER", PrimaryKey: true, Position: 1}, meta.Columns[0])
	assert.Equal(t, adapter.Column{Name: "name", Type: "VARCHAR(64)", Nullable: true, Position: 2}, meta.Columns[1])
	assert.Equal(t, adapter.Column{Name: "balance", Type: "DECIMAL(12,2)", Position: 3}, meta.Columns[2])
	assert.Equal(t, []string{"id"}, meta.PrimaryKey())

	_, err = adp.GetTableMetadata(ctx, "main.ghost")
	assert.ErrorContains(t, err, "table main.ghost not found")
}

func TestAdapter_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	adp := connectMemory(t)

	_, err := adp.Exec(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)

	n, err := adp.Exec(ctx, `INSERT INTO t (id, v) VALUES (?, ?), (?, ?)`, 1, "a", 2, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := adp.Query(ctx, `SELECT v FROM t WHERE id = `+adp.Placeholder(1), 2)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var v string
	require.NoError(t, rows.Scan(&v))
	assert.Equal(t, "b", v)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())
}

func TestAdapter_Registered(t *testing.T) {
	for _, name := range []string{"sqlite", "sqlite3", "file"} {
		assert.True(t, adapter.IsRegistered(name), name)
	}
	resolved, ok := adapter.Resolve("sqlite3")
	assert.True(t, ok)
	assert.Equal(t, "sqlite", resolved)

	assert.Equal(t, "sqlite", New(nil).DialectName())
}
