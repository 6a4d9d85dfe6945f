package duckdb

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	godb "github.com/marcboeker/go-duckdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
)

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
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "test.duckdb")
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
			require.NoError(t, adp.Connect(ctx, adapter.Config{Path: dbPath}))
			defer func() { _ = adp.Close() }()

			if tt.verify != nil {
				tt.verify(t, dbPath)
			}
		})
	}
}

func TestAdapter_ConnectAppliesSettings(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{
		Path:    ":memory:",
		Options: map[string]any{"settings": map[string]any{"threads": 1}},
	}))
	defer func() { _ = adp.Close() }()

	var threads int64
	require.NoError(t, adp.Conn().QueryRowContext(ctx, "SELECT current_setting('threads')").Scan(&threads))
	assert.Equal(t, int64(1), threads)
}

func TestAdapter_ConnectRejectsBadOptions(t *testing.T) {
	err := New(nil).Connect(context.Background(), adapter.Config{
		Options: map[string]any{"bogus": true},
	})
	assert.ErrorContains(t, err, "invalid duckdb options")
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Exec(ctx, "SELECT 1")
				return err
			},
		},
		{
			name: "query without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Query(ctx, "SELECT 1")
				return err
			},
		},
		{
			name: "metadata without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.GetTableMetadata(ctx, "t")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation(context.Background(), New(nil))
			assert.Error(t, err, "expected error when operating without connection")
		})
	}
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Path: ":memory:"}))
	defer func() { _ = adp.Close() }()

	_, err := adp.Exec(ctx, `
		CREATE TABLE account (
			id INTEGER PRIMARY KEY,
			name VARCHAR,
			balance DECIMAL(12,2) NOT NULL
		)
	`)
	require.NoError(t, err)

	meta, err := adp.GetTableMetadata(ctx, "account")
	require.NoError(t, err)

	assert.Equal(t, "main", meta.Schema)
	require.Len(t, meta.Columns, 3)
	assert.Equal(t, "id", meta.Columns[0].Name)
	assert.Equal(t, "INTEGER", meta.Columns[0].Type)
	assert.True(t, meta.Columns[0].PrimaryKey)
	assert.Equal(t, "VARCHAR", meta.Columns[1].Type)
	assert.True(t, meta.Columns[1].Nullable)
	assert.Equal(t, "DECIMAL(12,2)", meta.Columns[2].Type)
	assert.False(t, meta.Columns[2].Nullable)
	assert.Equal(t, 3, meta.Columns[2].Position)
	assert.Equal(t, []string{"id"}, meta.PrimaryKey())

	_, err = adp.GetTableMetadata(ctx, "missing")
	assert.ErrorContains(t, err, "table missing not found")
}

func TestAdapter_ExecReportsAffectedRows(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Path: ":memory:"}))
	defer func() { _ = adp.Close() }()

	_, err := adp.Exec(ctx, `CREATE TABLE t (id INTEGER, v VARCHAR)`)
	require.NoError(t, err)

	n, err := adp.Exec(ctx, `INSERT INTO t VALUES (?, ?), (?, ?)`, 1, "a", 2, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = adp.Exec(ctx, `UPDATE t SET v = ? WHERE id = ?`, "z", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAdapter_Registry(t *testing.T) {
	assert.True(t, adapter.IsRegistered("duckdb"))
	adp, err := adapter.NewAdapter(adapter.Config{Type: "duckdb"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", adp.DialectName())
}

func TestAdapter_ConvertValue(t *testing.T) {
	huge, ok := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
	require.True(t, ok)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "decimal", in: godb.Decimal{Width: 12, Scale: 2, Value: big.NewInt(1050)}, want: decimal.RequireFromString("10.50")},
		{name: "negative decimal", in: &godb.Decimal{Width: 12, Scale: 2, Value: big.NewInt(-5)}, want: decimal.RequireFromString("-0.05")},
		{name: "hugeint", in: huge, want: decimal.RequireFromString("170141183460469231731687303715884105727")},
		{name: "ubigint above int64", in: uint64(18446744073709551615), want: decimal.RequireFromString("18446744073709551615")},
		{name: "ubigint within int64", in: uint64(7), want: uint64(7)},
		{name: "string unchanged", in: "alice", want: "alice"},
		{name: "nil unchanged", in: nil, want: nil},
	}

	adp := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adp.ConvertValue(tt.in)
			if want, ok := tt.want.(decimal.Decimal); ok {
				d, ok := got.(decimal.Decimal)
				require.True(t, ok, "got %T", got)
				assert.True(t, want.Equal(d), "got %s, want %s", d, want)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdapter_GetTableMetadataFoldsCase(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Path: ":memory:"}))
	defer func() { _ = adp.Close() }()

	_, err := adp.Exec(ctx, "CREATE TABLE account (id INTEGER PRIMARY KEY, balance DECIMAL(12,2))")
	require.NoError(t, err)

	meta, err := adp.GetTableMetadata(ctx, "ACCOUNT")
	require.NoError(t, err)
	assert.Equal(t, "main", meta.Schema)
	assert.Equal(t, "account", meta.Name)
	assert.Equal(t, []string{"id"}, meta.PrimaryKey())

	_, err = adp.GetTableMetadata(ctx, "ghost")
	var notFound *adapter.TableNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
