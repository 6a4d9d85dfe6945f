package sqlite

import (
	"fmt"
	"net/url"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds SQLite-specific configuration.
// Parsed from adapter.Config.Options using mapstructure.
type Params struct {
	// ForeignKeys enables foreign key enforcement (default true).
	ForeignKeys *bool `mapstructure:"foreign_keys"`

	// JournalMode sets the journal mode for file databases (default "WAL").
	JournalMode string `mapstructure:"journal_mode"`

	// BusyTimeout is the lock wait in milliseconds (default 5000).
	BusyTimeout int `mapstructure:"busy_timeout"`
}

// ParseParams decodes adapter options into Params.
func ParseParams(options map[string]any) (*Params, error) {
	p := &Params{}
	if len(options) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(options); err != nil {
		return nil, fmt.Errorf("invalid sqlite options: %w", err)
	}
	return p, nil
}

// buildDSN appends the connection pragmas understood by modernc.org/sqlite.
func buildDSN(path string, p *Params) string {
	q := url.Values{}

	fk := p.ForeignKeys == nil || *p.ForeignKeys
	if fk {
		q.Add("_pragma", "foreign_keys(1)")
	}

	busy := p.BusyTimeout
	if busy == 0 {
		busy = 5000
	}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))

	if path != ":memory:" {
		mode := p.JournalMode
		if mode == "" {
			mode = "WAL"
		}
		q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", mode))
	}

	return path + "?" + q.Encode()
}
