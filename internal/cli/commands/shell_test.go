package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprecord/internal/cli/output"
	"github.com/leapstack-labs/leaprecord/internal/session"
	"github.com/leapstack-labs/leaprecord/pkg/record"
)

func TestShellCommand_Script(t *testing.T) {
	cfg := seededConfig(t)

	script := func(t *testing.T, lines ...string) result {
		t.Helper()
		in := strings.NewReader(strings.Join(lines, "\n") + "\n")
		return execute(t, NewShellCommand(), cfg, output.ModeTable, in)
	}

	t.Run("new and persist", func(t *testing.T) {
		res := script(t,
			"# create carol",
			"new account",
			"found",
			"set id 3",
			"set name carol",
			"set balance 7.25",
			"persist",
			"found",
			".quit",
		)
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "new account record")
		assert.Contains(t, res.out, "found: unknown")
		assert.Contains(t, res.out, "persisted account")
		assert.Contains(t, res.out, "found: true")

		got := execute(t, NewGetCommand(), cfg, output.ModeJSON, nil, "account", "3")
		require.NoError(t, got.err)
		var v output.RecordView
		require.NoError(t, json.Unmarshal([]byte(got.out), &v))
		assert.Equal(t, "true", v.Found)
		assert.Equal(t, "carol", v.Fields[1].Value)
		assert.Equal(t, "7.25", v.Fields[2].Value)
	})

	t.Run("find and update", func(t *testing.T) {
		res := script(t,
			"find account 1",
			"set name alicia",
			"update",
			"release",
			"find account 1",
			"get name",
			"get 0",
		)
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "updated account")
		assert.Contains(t, res.out, "released account")
		assert.Contains(t, res.out, "name = alicia")
		assert.Contains(t, res.out, "id = 1")
	})

	t.Run("find missing then persist", func(t *testing.T) {
		res := script(t,
			"find account 40",
			"found",
			"set name dave",
			"persist",
			"found",
		)
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "found: false")
		assert.Contains(t, res.out, "found: true")
	})

	t.Run("delete", func(t *testing.T) {
		res := script(t,
			"find account 2",
			"delete",
			"found",
		)
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "deleted account")
		assert.Contains(t, res.out, "found: false")

		again := script(t, "find account 2", "delete")
		require.Error(t, again.err)
		assert.ErrorIs(t, again.err, session.ErrRowNotFound)
		assert.Contains(t, again.err.Error(), "line 2")
	})

	t.Run("columns and help", func(t *testing.T) {
		res := script(t, ".help", "new account", "columns", ".exit", "bogus")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "find <table> <key...>")
		assert.Contains(t, res.out, "(3 columns)")
	})

	t.Run("errors stop the script", func(t *testing.T) {
		tests := []struct {
			name    string
			lines   []string
			wantErr string
			is      error
		}{
			{name: "no record", lines: []string{"get name"}, wantErr: "line 1: no current record"},
			{name: "released record", lines: []string{"new account", "release", "set name x"}, wantErr: "line 3: no current record"},
			{name: "unknown command", lines: []string{"new account", "frobnicate"}, wantErr: `unknown command "frobnicate"`},
			{name: "type mismatch", lines: []string{"new account", "set id abc"}, is: record.ErrTypeMismatch},
			{name: "bad column", lines: []string{"new account", "set 7 x"}, is: record.ErrInvalidColumn},
			{name: "usage", lines: []string{"find account"}, wantErr: "usage: find <table> <key...>"},
			{name: "empty persist", lines: []string{"new account", "persist"}, wantErr: "no columns are set"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res := script(t, tt.lines...)
				require.Error(t, res.err)
				if tt.wantErr != "" {
					assert.Contains(t, res.err.Error(), tt.wantErr)
				}
				if tt.is != nil {
					assert.ErrorIs(t, res.err, tt.is)
				}
			})
		}
	})
}
