package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/internal/cli/config"
	"github.com/leapstack-labs/leaprecord/internal/session"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <key...>",
		Short: "Find a record by primary key and print it",
		Long: `Find a record by primary key and print its columns. Key values are given
in key column order; a missing row is printed with found: false.`,
		Example: `  leaprecord get account 1
  leaprecord get order_line 42 3 -o yaml`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, f *session.Factory, s *session.Session) error {
				tbl, err := f.Catalog().Table(ctx, args[0])
				if err != nil {
					return err
				}
				key, err := parseKey(tbl, args[1:])
				if err != nil {
					return err
				}

				rec := newTableRecord(args[0])
				if err := s.Find(ctx, rec, key...); err != nil {
					return err
				}
				defer func() { _ = rec.Release() }()

				v, err := rec.view()
				if err != nil {
					return err
				}
				return config.GetRenderer(ctx).Record(v)
			})
		},
	}
}
