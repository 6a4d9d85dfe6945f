package commands

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/leapstack-labs/leaprecord/pkg/adapters/sqlite"

	"github.com/leapstack-labs/leaprecord/internal/cli/output"
	clitest "github.com/leapstack-labs/leaprecord/internal/cli/testutil"
	intconfig "github.com/leapstack-labs/leaprecord/internal/config"
	"github.com/leapstack-labs/leaprecord/internal/session"
	"github.com/leapstack-labs/leaprecord/internal/testutil"
	"github.com/leapstack-labs/leaprecord/pkg/record"
)

// seededConfig returns a config whose "main" unit is a SQLite file holding
// the account table with two rows.
func seededConfig(t *testing.T) *intconfig.Config {
	t.Helper()
	ctx := context.Background()

	unit := testutil.FileUnit(t)
	unit.Name = intconfig.DefaultUnit
	unit.MigrationsDir = testutil.WriteMigrations(t, map[string]string{
		"00001_account.sql": testutil.AccountMigration,
	})

	f, err := session.NewFactory(ctx, unit, testutil.NewTestLogger(t))
	require.NoError(t, err)
	_, err = f.Adapter().Exec(ctx, `INSERT INTO account (id, name, balance) VALUES (1, 'alice', 10.50), (2, 'bob', NULL)`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	return &intconfig.Config{
		DefaultUnit: intconfig.DefaultUnit,
		Output:      intconfig.DefaultOutput,
		Units:       map[string]*intconfig.Unit{intconfig.DefaultUnit: unit},
	}
}

type result struct {
	out    string
	errOut string
	err    error
}

// execute runs cmd with cfg and a non-TTY renderer in mode.
func execute(t *testing.T, cmd *cobra.Command, cfg *intconfig.Config, mode output.Mode, stdin io.Reader, args ...string) result {
	t.Helper()
	tr := clitest.NewTestRenderer(mode, false)

	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(tr.Out)
	cmd.SetErr(tr.ErrOut)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	err := cmd.ExecuteContext(clitest.Context(t, cfg, tr))

	clitest.AssertNoANSI(t, tr.Output())
	return result{out: tr.Output(), errOut: tr.ErrorOutput(), err: err}
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		use  string
		flag string
	}{
		{cmd: NewCheckCommand(), use: "check [table...]"},
		{cmd: NewColumnsCommand(), use: "columns <table>"},
		{cmd: NewGetCommand(), use: "get <table> <key...>"},
		{cmd: NewShellCommand(), use: "shell", flag: "history-file"},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			if tt.flag != "" {
				assert.NotNil(t, tt.cmd.Flags().Lookup(tt.flag), "flag %q should exist", tt.flag)
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	cfg := seededConfig(t)

	t.Run("connects and resolves tables", func(t *testing.T) {
		res := execute(t, NewCheckCommand(), cfg, output.ModeTable, nil, "account")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, `Persistence unit "main"`)
		assert.Contains(t, res.out, "configuration is valid")
		assert.Contains(t, res.out, "connected (sqlite)")
		assert.Contains(t, res.out, "session opened")
		assert.Contains(t, res.out, "table main.account: 3 columns, 1 key columns")
	})

	t.Run("unknown table", func(t *testing.T) {
		res := execute(t, NewCheckCommand(), cfg, output.ModeTable, nil, "account", "ghost")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "1 of 2 tables could not be resolved")
		assert.Contains(t, res.errOut, "table ghost not found")
	})

	t.Run("missing connectString", func(t *testing.T) {
		bad := &intconfig.Config{
			DefaultUnit: "main",
			Units:       map[string]*intconfig.Unit{"main": {}},
		}
		res := execute(t, NewCheckCommand(), bad, output.ModeTable, nil)
		require.Error(t, res.err)
		assert.ErrorIs(t, res.err, intconfig.ErrMissingConnectString)
		assert.Contains(t, res.err.Error(), "connectString")
		assert.Contains(t, res.errOut, "connectString")
	})

	t.Run("unknown unit", func(t *testing.T) {
		other := *cfg
		other.SelectedUnit = "reporting"
		res := execute(t, NewCheckCommand(), &other, output.ModeTable, nil)
		var unitErr *intconfig.UnknownUnitError
		require.ErrorAs(t, res.err, &unitErr)
		assert.Equal(t, "reporting", unitErr.Name)
	})
}

func TestColumnsCommand(t *testing.T) {
	cfg := seededConfig(t)

	t.Run("table", func(t *testing.T) {
		res := execute(t, NewColumnsCommand(), cfg, output.ModeTable, nil, "account")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "balance")
		assert.Contains(t, res.out, "(3 columns)")
	})

	t.Run("json", func(t *testing.T) {
		res := execute(t, NewColumnsCommand(), cfg, output.ModeJSON, nil, "account")
		require.NoError(t, res.err)

		var cols []map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.out), &cols))
		require.Len(t, cols, 3)
		assert.Equal(t, "id", cols[0]["name"])
		assert.Equal(t, true, cols[0]["primary_key"])
		assert.Equal(t, "decimal", cols[2]["type"])
		assert.Equal(t, "DECIMAL(12,2)", cols[2]["sql_type"])
	})

	t.Run("requires a table", func(t *testing.T) {
		res := execute(t, NewColumnsCommand(), cfg, output.ModeTable, nil)
		assert.Error(t, res.err)
	})
}

func TestGetCommand(t *testing.T) {
	cfg := seededConfig(t)

	getJSON := func(t *testing.T, args ...string) output.RecordView {
		t.Helper()
		res := execute(t, NewGetCommand(), cfg, output.ModeJSON, nil, args...)
		require.NoError(t, res.err)
		var v output.RecordView
		require.NoError(t, json.Unmarshal([]byte(res.out), &v))
		return v
	}

	t.Run("found", func(t *testing.T) {
		v := getJSON(t, "account", "1")
		assert.Equal(t, "account", v.Table)
		assert.Equal(t, "true", v.Found)
		require.Len(t, v.Fields, 3)
		assert.Equal(t, "alice", v.Fields[1].Value)
		assert.Equal(t, "10.5", v.Fields[2].Value)
	})

	t.Run("null column", func(t *testing.T) {
		v := getJSON(t, "account", "2")
		assert.Nil(t, v.Fields[2].Value)
	})

	t.Run("not found", func(t *testing.T) {
		v := getJSON(t, "account", "99")
		assert.Equal(t, "false", v.Found)
		assert.EqualValues(t, 99, v.Fields[0].Value)
	})

	t.Run("table output", func(t *testing.T) {
		res := execute(t, NewGetCommand(), cfg, output.ModeTable, nil, "account", "1")
		require.NoError(t, res.err)
		assert.True(t, strings.HasPrefix(res.out, "account (found: true)\n"), "output: %q", res.out)
		assert.Contains(t, res.out, "alice")
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			args    []string
			wantErr string
		}{
			{name: "bad key", args: []string{"account", "abc"}, wantErr: "cannot use value of type string as int"},
			{name: "too many key values", args: []string{"account", "1", "2"}, wantErr: "primary key has 1 columns, got 2 values"},
			{name: "unknown table", args: []string{"ghost", "1"}, wantErr: "table ghost not found"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res := execute(t, NewGetCommand(), cfg, output.ModeTable, nil, tt.args...)
				require.Error(t, res.err)
				assert.Contains(t, res.err.Error(), tt.wantErr)
			})
		}
	})
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		col     record.Column
		in      string
		want    any
		wantErr bool
	}{
		{name: "int", col: record.Column{Name: "id", Type: record.TypeInt}, in: "42", want: int64(42)},
		{name: "bad int", col: record.Column{Name: "id", Type: record.TypeInt}, in: "x", wantErr: true},
		{name: "string", col: record.Column{Name: "name", Type: record.TypeString}, in: "bob", want: "bob"},
		{name: "null", col: record.Column{Name: "name", Type: record.TypeString, Nullable: true}, in: "NULL", want: nil},
		{name: "bool", col: record.Column{Name: "active", Type: record.TypeBool}, in: "true", want: true},
		{name: "bad bool", col: record.Column{Name: "active", Type: record.TypeBool}, in: "maybe", wantErr: true},
		{name: "float", col: record.Column{Name: "rate", Type: record.TypeFloat}, in: "0.25", want: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseValue(tt.col, tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, record.ErrTypeMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveColumn(t *testing.T) {
	cols := []record.Column{
		{Index: 0, Name: "id"},
		{Index: 1, Name: "Name"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr string
	}{
		{ref: "0", want: "id"},
		{ref: "1", want: "Name"},
		{ref: "name", want: "Name"},
		{ref: "5", wantErr: "invalid column index 5"},
		{ref: "email", wantErr: `unknown column "email"`},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveColumn(cols, tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}
