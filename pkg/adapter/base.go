package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, Query and Conn implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection", slog.String("type", b.Cfg.Type))
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) (int64, error) {
	if b.DB == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	res, err := b.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute SQL: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Not every driver reports affected rows.
		return 0, nil
	}
	return n, nil
}

// Query executes a statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) (*Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

// Conn returns the underlying connection pool.
func (b *BaseSQLAdapter) Conn() *sql.DB {
	return b.DB
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ApplyPoolSize caps the open connections of the pool when configured.
func (b *BaseSQLAdapter) ApplyPoolSize() {
	if b.DB != nil && b.Cfg.PoolSize > 0 {
		b.DB.SetMaxOpenConns(b.Cfg.PoolSize)
		b.DB.SetMaxIdleConns(b.Cfg.PoolSize)
	}
}

// DefaultSchema returns the configured Database, or fallback when unset.
func (b *BaseSQLAdapter) DefaultSchema(fallback string) string {
	if b.Cfg.Database != "" {
		return b.Cfg.Database
	}
	return fallback
}

// QuoteIdent quotes an identifier with double quotes, which SQLite, DuckDB
// and PostgreSQL all accept.
func (b *BaseSQLAdapter) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses defaultSchema if the reference is not qualified.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// GetTableMetadataCommon provides a shared implementation of GetTableMetadata
// over information_schema. Primary keys are filled in from keyQuery, which
// receives the same (schema, table) arguments and returns key column names;
// an empty keyQuery skips that step.
//
// When no table matches the name exactly, the lookup is repeated
// case-insensitively and the returned Metadata carries the stored names.
func (b *BaseSQLAdapter) GetTableMetadataCommon(ctx context.Context, table, defaultSchema string, placeholder func(int) string, keyQuery string) (*Metadata, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema, tableName := ParseQualifiedName(table, defaultSchema)

	//nolint:gosec // Placeholders come from the adapter
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, placeholder(1), placeholder(2))

	columns, err := b.queryColumns(ctx, query, schema, tableName)
	if err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		stored, ok, err := b.lookupTableFold(ctx, table, schema, tableName, placeholder)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &TableNotFoundError{Table: table}
		}
		schema, tableName = stored[0], stored[1]
		if columns, err = b.queryColumns(ctx, query, schema, tableName); err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			return nil, &TableNotFoundError{Table: table}
		}
	}

	if keyQuery != "" {
		keys, err := b.queryKeyColumns(ctx, keyQuery, schema, tableName)
		if err != nil {
			return nil, err
		}
		for i := range columns {
			if keys[columns[i].Name] {
				columns[i].PrimaryKey = true
			}
		}
	}

	return &Metadata{
		Schema:  schema,
		Name:    tableName,
		Columns: columns,
	}, nil
}

func (b *BaseSQLAdapter) queryColumns(ctx context.Context, query, schema, table string) ([]Column, error) {
	rows, err := b.DB.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return columns, nil
}

// lookupTableFold finds the stored schema and table name matching schema and
// table regardless of case. More than one match is an error.
func (b *BaseSQLAdapter) lookupTableFold(ctx context.Context, ref, schema, table string, placeholder func(int) string) ([2]string, bool, error) {
	//nolint:gosec // Placeholders come from the adapter
	query := fmt.Sprintf(`
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE lower(table_schema) = lower(%s) AND lower(table_name) = lower(%s)
	`, placeholder(1), placeholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, table)
	if err != nil {
		return [2]string{}, false, fmt.Errorf("failed to look up table %s: %w", ref, err)
	}
	defer func() { _ = rows.Close() }()

	var matches [][2]string
	for rows.Next() {
		var m [2]string
		if err := rows.Scan(&m[0], &m[1]); err != nil {
			return [2]string{}, false, fmt.Errorf("failed to scan table name: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return [2]string{}, false, fmt.Errorf("error iterating table names: %w", err)
	}

	switch len(matches) {
	case 0:
		return [2]string{}, false, nil
	case 1:
		return matches[0], true, nil
	default:
		return [2]string{}, false, fmt.Errorf("table %s is ambiguous: matches %s.%s and %s.%s",
			ref, matches[0][0], matches[0][1], matches[1][0], matches[1][1])
	}
}

func (b *BaseSQLAdapter) queryKeyColumns(ctx context.Context, keyQuery, schema, table string) (map[string]bool, error) {
	rows, err := b.DB.QueryContext(ctx, keyQuery, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary key: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan primary key: %w", err)
		}
		keys[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating primary key: %w", err)
	}
	return keys, nil
}
