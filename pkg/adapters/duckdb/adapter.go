package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"math/big"

	godb "github.com/marcboeker/go-duckdb"
	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
)

const primaryKeyQuery = `
	SELECT unnest(constraint_column_names)
	FROM duckdb_constraints()
	WHERE schema_name = ? AND table_name = ? AND constraint_type = 'PRIMARY KEY'
`

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new DuckDB adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "duckdb"
}

// Placeholder returns the positional parameter marker.
func (a *Adapter) Placeholder(_ int) string {
	return "?"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" (or an empty path) for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}

	params, err := ParseParams(cfg.Options)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", cfg.Path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// The connector owns a single database instance shared by the pool.
	for _, stmt := range params.setupStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply duckdb setting %q: %w", stmt, err)
		}
	}

	a.DB = db
	a.Cfg = cfg
	a.ApplyPoolSize()
	return nil
}

// GetTableMetadata retrieves the column layout of a table.
func (a *Adapter) GetTableMetadata(ctx context.Context, table string) (*adapter.Metadata, error) {
	return a.GetTableMetadataCommon(ctx, table, a.DefaultSchema("main"), a.Placeholder, primaryKeyQuery)
}

// ConvertValue turns go-duckdb's DECIMAL and wide integer values into
// decimal.Decimal. Other values are returned unchanged.
func (a *Adapter) ConvertValue(v any) any {
	switch x := v.(type) {
	case godb.Decimal:
		return fromDuckDecimal(x)
	case *godb.Decimal:
		if x != nil {
			return fromDuckDecimal(*x)
		}
	case *big.Int:
		if x != nil {
			return decimal.NewFromBigInt(x, 0)
		}
	case uint64:
		if x > math.MaxInt64 {
			return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
		}
	}
	return v
}

func fromDuckDecimal(d godb.Decimal) decimal.Decimal {
	if d.Value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(d.Value, -int32(d.Scale))
}

// Ensure Adapter implements the adapter interfaces
var (
	_ adapter.Adapter        = (*Adapter)(nil)
	_ adapter.ValueConverter = (*Adapter)(nil)
)
