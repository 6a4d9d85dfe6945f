package config

import (
	"strings"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
)

// ParseConnectString splits a connectString into an adapter config.
//
//	sqlite:./data.db        sqlite file
//	sqlite::memory:         sqlite in-memory
//	duckdb:/var/lib/x.db    duckdb file
//	postgres://host/db      postgres (also postgresql://)
//
// Type is the canonical adapter name when the scheme is registered, else the
// scheme itself. Path is the location with any leading "//" removed; DSN is the
// whole string.
//
// In YAML a value ending in a colon must be quoted:
//
//	connectString: "sqlite::memory:"
func ParseConnectString(s string) (adapter.Config, error) {
	s = strings.TrimSpace(s)
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || scheme == "" || strings.ContainsAny(scheme, `/\ `) {
		return adapter.Config{}, &InvalidConnectStringError{Value: s}
	}

	scheme = strings.ToLower(scheme)
	typ := scheme
	if name, ok := adapter.Resolve(scheme); ok {
		typ = name
	}

	path := strings.TrimPrefix(rest, "//")
	return adapter.Config{
		Type: typ,
		Path: path,
		DSN:  s,
	}, nil
}

// AdapterConfig builds the adapter config for the unit.
func (u *Unit) AdapterConfig() (adapter.Config, error) {
	if err := u.Validate(); err != nil {
		return adapter.Config{}, err
	}
	cfg, err := ParseConnectString(u.ConnectString)
	if err != nil {
		return adapter.Config{}, err
	}
	cfg.Database = u.Database
	cfg.PoolSize = u.PoolSize
	cfg.Options = u.Options
	return cfg, nil
}
