// Package commands implements the leaprecord CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaprecord/internal/catalog"
	"github.com/leapstack-labs/leaprecord/internal/cli/config"
	"github.com/leapstack-labs/leaprecord/internal/cli/output"
	"github.com/leapstack-labs/leaprecord/internal/session"
	"github.com/leapstack-labs/leaprecord/pkg/record"
)

// tableRecord is a record whose table is chosen at runtime.
type tableRecord struct {
	record.Record
	table string
}

func newTableRecord(table string) *tableRecord {
	return &tableRecord{table: table}
}

func (r *tableRecord) Table() (string, bool) {
	return r.table, r.table != ""
}

// view reads every column of r for rendering.
func (r *tableRecord) view() (output.RecordView, error) {
	cols, err := r.Columns()
	if err != nil {
		return output.RecordView{}, err
	}
	values := make([]any, len(cols))
	for i := range cols {
		if values[i], err = r.Get(i); err != nil {
			return output.RecordView{}, err
		}
	}
	found, err := r.Found()
	if err != nil {
		return output.RecordView{}, err
	}
	return output.NewRecordView(r.table, found, cols, values), nil
}

// openFactory creates a session factory for the selected unit.
func openFactory(cmd *cobra.Command) (*session.Factory, error) {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	unit, err := cfg.Unit("")
	if err != nil {
		return nil, err
	}
	return session.NewFactory(ctx, unit, config.GetLogger(ctx))
}

// withSession opens a factory and a session, runs fn and closes both.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, f *session.Factory, s *session.Session) error) (err error) {
	f, err := openFactory(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	s, err := f.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	return fn(ctx, f, s)
}

// parseValue converts a command-line argument into a value for col.
// NULL (any case) is the null value.
func parseValue(col record.Column, s string) (any, error) {
	if strings.EqualFold(s, "null") {
		return nil, nil
	}
	if col.Type == record.TypeBool {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, &record.TypeMismatchError{Column: col.Name, Want: col.Type, Got: "string"}
		}
		return b, nil
	}
	return col.FromDriver(s)
}

// resolveColumn finds a column by ordinal or by name.
func resolveColumn(cols []record.Column, ref string) (record.Column, error) {
	if i, err := strconv.Atoi(ref); err == nil {
		if i < 0 || i >= len(cols) {
			return record.Column{}, &record.ColumnError{Index: i, Count: len(cols)}
		}
		return cols[i], nil
	}
	idx := record.NewIndex(cols)
	if i, ok := idx.Ordinal(ref); ok {
		return cols[i], nil
	}
	return record.Column{}, fmt.Errorf("unknown column %q", ref)
}

// parseKey converts key arguments using the types of tbl's key columns.
func parseKey(tbl *catalog.Table, args []string) ([]any, error) {
	if len(tbl.Key) == 0 || len(args) != len(tbl.Key) {
		return nil, &session.KeyError{Table: tbl.Name, Want: len(tbl.Key), Got: len(args)}
	}
	key := make([]any, len(args))
	for i, ord := range tbl.Key {
		v, err := parseValue(tbl.Columns[ord], args[i])
		if err != nil {
			return nil, err
		}
		key[i] = v
	}
	return key, nil
}
