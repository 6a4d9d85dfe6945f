package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/leaprecord/internal/cli/config"
	"github.com/leapstack-labs/leaprecord/internal/cli/output"
	"github.com/leapstack-labs/leaprecord/internal/session"
)

const shellPrompt = "leaprecord> "

var errNoRecord = errors.New("no current record (use find or new)")

// ShellOptions holds options for the shell command.
type ShellOptions struct {
	HistoryFile string
}

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	opts := &ShellOptions{}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Work with records interactively over one session",
		Long: `Start an interactive shell over one session of the selected unit.

One record is current at a time. find and new replace it; get, set,
persist, update, delete, columns, found and release act on it.
When stdin is not a terminal, commands are read one per line.`,
		Example: `  leaprecord shell
  printf 'find account 1\nset name bob\nupdate\n' | leaprecord shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.HistoryFile, "history-file", "", "File to keep shell history in")
	return cmd
}

func runShell(cmd *cobra.Command, opts *ShellOptions) error {
	return withSession(cmd, func(ctx context.Context, f *session.Factory, s *session.Session) error {
		sh := &shell{factory: f, sess: s, r: config.GetRenderer(ctx)}
		defer sh.replace(nil)

		if in, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(in.Fd())) {
			return sh.interactive(ctx, cmd, opts)
		}
		return sh.script(ctx, cmd.InOrStdin())
	})
}

// shell holds the state of one shell: its session and the current record.
type shell struct {
	factory *session.Factory
	sess    *session.Session
	r       *output.Renderer
	rec     *tableRecord
}

func (sh *shell) interactive(ctx context.Context, cmd *cobra.Command, opts *ShellOptions) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     opts.HistoryFile,
		AutoComplete:    shellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leaprecord shell (unit: %s, session: %s)\n", sh.factory.Unit(), sh.sess.ID())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := sh.exec(ctx, line)
		if err != nil {
			sh.r.Error(err.Error())
		}
		if quit {
			return nil
		}
		rl.SetPrompt(sh.prompt())
	}
}

// script runs commands read one per line. Blank lines and lines starting
// with # are skipped. The first failing command stops the script.
func (sh *shell) script(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		quit, err := sh.exec(ctx, scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

func (sh *shell) prompt() string {
	if sh.rec == nil {
		return shellPrompt
	}
	return fmt.Sprintf("leaprecord(%s)> ", sh.rec.table)
}

// exec runs one shell command. quit reports whether the shell should exit.
func (sh *shell) exec(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case ".quit", ".exit":
		return true, nil
	case ".help":
		printShellHelp(sh.r.Out())
		return false, nil
	case "find":
		return false, sh.find(ctx, args)
	case "new":
		return false, sh.newInstance(ctx, args)
	}

	rec := sh.rec
	if rec == nil {
		return false, errNoRecord
	}

	switch name {
	case "get":
		return false, sh.get(args)
	case "set":
		return false, sh.set(args)
	case "show":
		return false, sh.show()
	case "columns":
		cols, err := rec.Columns()
		if err != nil {
			return false, err
		}
		return false, sh.r.Columns(cols)
	case "found":
		found, err := rec.Found()
		if err != nil {
			return false, err
		}
		_, _ = fmt.Fprintf(sh.r.Out(), "found: %s\n", found)
		return false, nil
	case "persist":
		if err := sh.sess.Persist(ctx, rec); err != nil {
			return false, err
		}
		sh.r.Success("persisted " + rec.table)
		return false, nil
	case "update":
		if err := sh.sess.Update(ctx, rec); err != nil {
			return false, err
		}
		sh.r.Success("updated " + rec.table)
		return false, nil
	case "delete":
		if err := sh.sess.Delete(ctx, rec); err != nil {
			return false, err
		}
		sh.r.Success("deleted " + rec.table)
		return false, nil
	case "release":
		err := rec.Release()
		sh.rec = nil
		if err != nil {
			return false, err
		}
		sh.r.Muted("released " + rec.table)
		return false, nil
	}
	return false, fmt.Errorf("unknown command %q (type .help for commands)", fields[0])
}

// replace makes rec the current record, releasing the previous one.
func (sh *shell) replace(rec *tableRecord) {
	if sh.rec != nil {
		_ = sh.rec.Release()
	}
	sh.rec = rec
}

func (sh *shell) find(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: find <table> <key...>")
	}
	tbl, err := sh.factory.Catalog().Table(ctx, args[0])
	if err != nil {
		return err
	}
	key, err := parseKey(tbl, args[1:])
	if err != nil {
		return err
	}

	rec := newTableRecord(args[0])
	if err := sh.sess.Find(ctx, rec, key...); err != nil {
		return err
	}
	sh.replace(rec)
	return sh.show()
}

func (sh *shell) newInstance(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: new <table>")
	}
	rec := newTableRecord(args[0])
	if err := sh.sess.NewInstance(ctx, rec); err != nil {
		return err
	}
	sh.replace(rec)
	sh.r.Muted("new " + rec.table + " record")
	return nil
}

func (sh *shell) get(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: get <column>")
	}
	cols, err := sh.rec.Columns()
	if err != nil {
		return err
	}
	col, err := resolveColumn(cols, args[0])
	if err != nil {
		return err
	}
	v, err := sh.rec.Get(col.Index)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(sh.r.Out(), "%s = %s\n", col.Name, output.FormatValue(v))
	return nil
}

func (sh *shell) set(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: set <column> <value>")
	}
	cols, err := sh.rec.Columns()
	if err != nil {
		return err
	}
	col, err := resolveColumn(cols, args[0])
	if err != nil {
		return err
	}
	v, err := parseValue(col, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	return sh.rec.Set(col.Index, v)
}

func (sh *shell) show() error {
	v, err := sh.rec.view()
	if err != nil {
		return err
	}
	return sh.r.Record(v)
}

func shellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("find"),
		readline.PcItem("new"),
		readline.PcItem("get"),
		readline.PcItem("set"),
		readline.PcItem("show"),
		readline.PcItem("persist"),
		readline.PcItem("update"),
		readline.PcItem("delete"),
		readline.PcItem("columns"),
		readline.PcItem("found"),
		readline.PcItem("release"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
	)
}

func printShellHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, `Commands:
  find <table> <key...>   Load a record by primary key
  new <table>             Start a new record
  get <column>            Print a column (by name or index)
  set <column> <value>    Set a column; NULL sets null
  show                    Print the current record
  columns                 Show the record's columns
  found                   Show the lookup result (true, false, unknown)
  persist                 Insert the current record
  update                  Write changed columns
  delete                  Delete the current record
  release                 Release the current record
  .help                   Show this help
  .quit                   Exit`)
}
