package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
)

// gooseDialects maps adapter dialects to goose dialects.
var gooseDialects = map[string]goose.Dialect{
	"sqlite":   goose.DialectSQLite3,
	"postgres": goose.DialectPostgres,
}

// migrate applies the pending goose migrations found in dir.
func migrate(ctx context.Context, adp adapter.Adapter, dir string, logger *slog.Logger) error {
	dialect, ok := gooseDialects[adp.DialectName()]
	if !ok {
		return fmt.Errorf("migrations are not supported for %s", adp.DialectName())
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("migrations dir %s is not a directory", dir)
	}

	provider, err := goose.NewProvider(dialect, adp.Conn(), os.DirFS(dir))
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		logger.Debug("applied migration",
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("duration", r.Duration))
	}
	logger.Info("migrations up to date", slog.String("dir", dir), slog.Int("applied", len(results)))
	return nil
}
