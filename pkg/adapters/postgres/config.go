package postgres

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/jackc/pgx/v5"
)

// Params holds PostgreSQL-specific configuration.
// Parsed from adapter.Config.Options using mapstructure.
type Params struct {
	// SSLMode is applied when the DSN does not carry one (default "disable").
	SSLMode string `mapstructure:"sslmode"`

	// ApplicationName is reported in pg_stat_activity.
	ApplicationName string `mapstructure:"application_name"`

	// SearchPath sets the session search_path.
	SearchPath string `mapstructure:"search_path"`
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
		return nil, fmt.Errorf("invalid postgres options: %w", err)
	}
	return p, nil
}

// buildConnConfig parses dsn (URL or keyword/value form) into a pgx config
// with the adapter params applied.
func buildConnConfig(dsn string, p *Params) (*pgx.ConnConfig, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}

	dsn, err := withSSLMode(dsn, p.SSLMode)
	if err != nil {
		return nil, err
	}

	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres DSN: %w", err)
	}

	if p.ApplicationName != "" {
		cfg.RuntimeParams["application_name"] = p.ApplicationName
	}
	if p.SearchPath != "" {
		cfg.RuntimeParams["search_path"] = p.SearchPath
	}
	return cfg, nil
}

// withSSLMode sets sslmode unless dsn already names one.
func withSSLMode(dsn, mode string) (string, error) {
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid postgres DSN: %w", err)
		}
		q := u.Query()
		if q.Get("sslmode") != "" && mode == "" {
			return dsn, nil
		}
		q.Set("sslmode", sslModeOrDefault(q.Get("sslmode"), mode))
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	if strings.Contains(dsn, "sslmode=") && mode == "" {
		return dsn, nil
	}
	return dsn + " sslmode=" + sslModeOrDefault("", mode), nil
}

func sslModeOrDefault(current, configured string) string {
	switch {
	case configured != "":
		return configured
	case current != "":
		return current
	default:
		return "disable"
	}
}
