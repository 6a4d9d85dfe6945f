package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/internal/cli/config"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [table...]",
		Short: "Validate the persistence unit and connect to it",
		Long: `Validate the selected persistence unit, connect to its storage and open a
session. Each table argument is resolved through the schema catalog.`,
		Example: `  leaprecord check
  leaprecord check --unit reporting account order_line`,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, tables []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	r := config.GetRenderer(ctx)

	r.Header(fmt.Sprintf("Persistence unit %q", cfg.UnitName()))
	if cfg.FileUsed != "" {
		r.Muted("config: " + cfg.FileUsed)
	}

	unit, err := cfg.Unit("")
	if err != nil {
		r.Error(err.Error())
		return err
	}
	if err := unit.Validate(); err != nil {
		r.Error(err.Error())
		return err
	}
	r.Success("configuration is valid")

	f, err := openFactory(cmd)
	if err != nil {
		r.Error(err.Error())
		return err
	}
	defer func() { _ = f.Close() }()
	r.Success(fmt.Sprintf("connected (%s)", f.Adapter().DialectName()))

	s, err := f.Open(ctx)
	if err != nil {
		r.Error(err.Error())
		return err
	}
	defer func() { _ = s.Close() }()
	r.Success("session opened")

	var failed int
	for _, name := range tables {
		tbl, err := f.Catalog().Table(ctx, name)
		if err != nil {
			r.Error(err.Error())
			failed++
			continue
		}
		r.Success(fmt.Sprintf("table %s: %d columns, %d key columns", tbl.Qualified(), len(tbl.Columns), len(tbl.Key)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tables could not be resolved", failed, len(tables))
	}
	return nil
}
