// Package output renders CLI results as tables, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leaprecord/pkg/record"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeTable Mode = "table"
	ModeJSON  Mode = "json"
	ModeYAML  Mode = "yaml"
)

// Modes lists the accepted --output values.
var Modes = []string{string(ModeTable), string(ModeJSON), string(ModeYAML)}

// ParseMode validates an --output value. Empty selects ModeTable.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeTable:
		return ModeTable, nil
	case ModeJSON, ModeYAML:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid output format %q (valid: table, json, yaml)", s)
}

// Styles holds the lipgloss styles used for status lines.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
}

// DefaultStyles returns the styles used on a terminal.
func DefaultStyles() Styles {
	return Styles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Header:  lipgloss.NewStyle().Bold(true),
	}
}

// Renderer writes command output in the selected mode. Styling is applied
// only when stdout is a terminal.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
// NO_COLOR and CLICOLOR=0 disable styling.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd())) && !termenv.EnvNoColor()
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with explicit terminal state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeTable
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: DefaultStyles(),
	}
}

// Mode returns the output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// IsTTY reports whether styled output is enabled.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Out returns the stdout writer.
func (r *Renderer) Out() io.Writer { return r.out }

// ErrOut returns the stderr writer.
func (r *Renderer) ErrOut() io.Writer { return r.errOut }

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.isTTY {
		return text
	}
	return s.Render(text)
}

// Success prints a success line to stdout.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.out, r.style(r.styles.Success, "✓ "+msg))
}

// Warning prints a warning line to stderr.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.style(r.styles.Warning, "! "+msg))
}

// Error prints an error line to stderr.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.style(r.styles.Error, "✗ "+msg))
}

// Muted prints a dimmed line to stdout.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.out, r.style(r.styles.Muted, msg))
}

// Header prints a section header to stdout.
func (r *Renderer) Header(msg string) {
	_, _ = fmt.Fprintln(r.out, r.style(r.styles.Header, msg))
}

// Field is one named value of a rendered record.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// RecordView is the rendered form of a bound record.
type RecordView struct {
	Table  string  `json:"table" yaml:"table"`
	Found  string  `json:"found" yaml:"found"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// NewRecordView pairs column metadata with values read from a record.
func NewRecordView(table string, found record.Found, cols []record.Column, values []any) RecordView {
	v := RecordView{Table: table, Found: found.String(), Fields: make([]Field, len(cols))}
	for i, c := range cols {
		var val any
		if i < len(values) {
			val = plain(values[i])
		}
		v.Fields[i] = Field{Name: c.Name, Value: val}
	}
	return v
}

// Columns renders column metadata.
func (r *Renderer) Columns(cols []record.Column) error {
	switch r.mode {
	case ModeJSON:
		return r.json(cols)
	case ModeYAML:
		return r.yaml(cols)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Name", "Type", "SQL Type", "Nullable", "Key"})
	for _, c := range cols {
		key := ""
		if c.PrimaryKey {
			key = "PK"
		}
		t.AppendRow(table.Row{c.Index, c.Name, c.Type.String(), c.SQLType, yesNo(c.Nullable), key})
	}
	t.Render()
	_, _ = fmt.Fprintf(r.out, "(%d columns)\n", len(cols))
	return nil
}

// Record renders one record.
func (r *Renderer) Record(v RecordView) error {
	switch r.mode {
	case ModeJSON:
		return r.json(v)
	case ModeYAML:
		return r.yaml(v)
	}

	// go-pretty wraps titles wider than the body.
	r.Header(fmt.Sprintf("%s (found: %s)", v.Table, v.Found))

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Value"})
	for _, f := range v.Fields {
		t.AppendRow(table.Row{f.Name, FormatValue(f.Value)})
	}
	t.Render()
	return nil
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) yaml(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// FormatValue formats a column value for table output.
func FormatValue(v any) string {
	switch val := plain(v).(type) {
	case nil:
		return "NULL"
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// plain converts driver and record values to JSON and YAML friendly scalars.
func plain(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.String()
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return v
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
