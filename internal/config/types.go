// Package config loads leaprecord configuration: the persistence units a
// session factory can be created from, and CLI settings.
//
// Sources are layered with koanf. Precedence (highest to lowest):
// flags > LEAPRECORD_* env vars > leaprecord.yaml > defaults.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Config is the loaded configuration.
type Config struct {
	// DefaultUnit names the unit used when none is selected.
	DefaultUnit string `koanf:"default_unit"`

	// Units holds the persistence units by name.
	Units map[string]*Unit `koanf:"units"`

	// SelectedUnit is set by --unit or LEAPRECORD_UNIT.
	SelectedUnit string `koanf:"unit"`

	// ConnectString is set by --connect-string and overrides the selected
	// unit's endpoint.
	ConnectString string `koanf:"connect_string"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

// Unit is a named persistence unit: one storage endpoint plus the settings
// used to connect to it and to hand out sessions.
type Unit struct {
	Name string `koanf:"-"`

	// ConnectString locates the storage, e.g. "sqlite:./data.db" or
	// "postgres://user@host/db".
	ConnectString string `koanf:"connectString"`

	// Database is the schema unqualified table names resolve in.
	Database string `koanf:"database"`

	ConnectRetries int           `koanf:"connect_retries"`
	ConnectDelay   time.Duration `koanf:"connect_delay"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// MaxSessions bounds concurrently open sessions.
	MaxSessions int `koanf:"max_sessions"`

	// PoolSize caps open connections; zero leaves the driver default.
	PoolSize int `koanf:"pool_size"`

	// MigrationsDir holds goose migrations applied when the factory is created.
	MigrationsDir string `koanf:"migrations_dir"`

	// Options are adapter-specific settings.
	Options map[string]any `koanf:"options"`
}

// UnitName returns the unit selected by flag or env, else the default unit.
func (c *Config) UnitName() string {
	if c.SelectedUnit != "" {
		return c.SelectedUnit
	}
	return c.DefaultUnit
}

// Unit returns the named persistence unit. An empty name selects UnitName().
func (c *Config) Unit(name string) (*Unit, error) {
	if name == "" {
		name = c.UnitName()
	}
	u, ok := c.Units[name]
	if !ok || u == nil {
		return nil, &UnknownUnitError{Name: name, Available: c.UnitNames()}
	}
	u.Name = name
	return u, nil
}

// UnitNames returns the configured unit names (sorted).
func (c *Config) UnitNames() []string {
	names := make([]string, 0, len(c.Units))
	for name := range c.Units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the unit can be used to create a session factory.
func (u *Unit) Validate() error {
	if strings.TrimSpace(u.ConnectString) == "" {
		return &MissingConnectionEndpointError{Unit: u.Name}
	}
	switch {
	case u.ConnectRetries < 0:
		return fmt.Errorf("persistence unit %q: connect_retries must not be negative", u.Name)
	case u.ConnectDelay < 0:
		return fmt.Errorf("persistence unit %q: connect_delay must not be negative", u.Name)
	case u.ConnectTimeout < 0:
		return fmt.Errorf("persistence unit %q: connect_timeout must not be negative", u.Name)
	case u.MaxSessions < 0:
		return fmt.Errorf("persistence unit %q: max_sessions must not be negative", u.Name)
	case u.PoolSize < 0:
		return fmt.Errorf("persistence unit %q: pool_size must not be negative", u.Name)
	}
	return nil
}
