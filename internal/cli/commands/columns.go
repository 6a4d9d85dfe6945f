package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/internal/cli/config"
)

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <table>",
		Short: "Show the column metadata records of a table are mapped with",
		Example: `  leaprecord columns account
  leaprecord columns bank.account -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFactory(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			tbl, err := f.Catalog().Table(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return config.GetRenderer(cmd.Context()).Columns(tbl.ColumnsCopy())
		},
	}
}
