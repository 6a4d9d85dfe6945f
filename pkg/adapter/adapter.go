// Package adapter provides the storage adapter contract used by leaprecord's
// session layer.
//
// An adapter wraps one database/sql driver and knows how to reach the
// storage, run parameterized statements and describe a table's columns.
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves in init().
package adapter

import (
	"context"
	"database/sql"
)

// Config holds the configuration for connecting to a storage backend.
// It is normally produced from a persistence unit's connectString.
type Config struct {
	// Type selects the adapter (e.g., "sqlite", "duckdb", "postgres")
	Type string

	// Path is the file path for file-based databases (SQLite, DuckDB).
	// Use ":memory:" for an in-memory database.
	Path string

	// DSN is a driver connection string for network databases.
	DSN string

	// Database is the database or schema that unqualified table names resolve in.
	Database string

	// PoolSize caps open connections; zero leaves the driver default.
	PoolSize int

	// Options holds adapter-specific settings, decoded by each adapter.
	Options map[string]any
}

// Column describes a column as reported by the backend.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool

	// Position is the 1-based ordinal position reported by the backend.
	Position int
}

// Metadata holds the column layout of a table.
type Metadata struct {
	Schema  string
	Name    string
	Columns []Column
}

// PrimaryKey returns the names of the primary key columns in key order.
func (m *Metadata) PrimaryKey() []string {
	var keys []string
	for _, c := range m.Columns {
		if c.PrimaryKey {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// ValueConverter is implemented by adapters whose driver scans values into
// driver-specific types. Sessions pass every scanned value through
// ConvertValue before converting it to the column's type.
type ValueConverter interface {
	ConvertValue(v any) any
}

// Adapter defines the interface that all storage adapters must implement.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows and reports the
	// number of affected rows.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// GetTableMetadata retrieves the column layout of a table, ordered by position.
	GetTableMetadata(ctx context.Context, table string) (*Metadata, error)

	// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
	Placeholder(n int) string

	// QuoteIdent quotes an identifier for use in generated SQL.
	QuoteIdent(name string) string

	// DialectName returns the SQL dialect name (e.g., "sqlite", "postgres").
	DialectName() string

	// Conn returns the underlying connection pool, or nil before Connect.
	Conn() *sql.DB
}
