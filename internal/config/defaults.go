package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	ConfigFileName    = "leaprecord.yaml"
	ConfigFileNameAlt = "leaprecord.yml"
	EnvPrefix         = "LEAPRECORD_"

	DefaultUnit           = "main"
	DefaultOutput         = "table"
	DefaultConnectRetries = 4
	DefaultConnectDelay   = 5 * time.Second
	DefaultConnectTimeout = 30 * time.Second
	DefaultMaxSessions    = 1024
)

func rootDefaults() map[string]any {
	return map[string]any{
		"default_unit": DefaultUnit,
		"output":       DefaultOutput,
		"verbose":      false,
	}
}

func unitDefaults() map[string]any {
	return map[string]any{
		"connect_retries": DefaultConnectRetries,
		"connect_delay":   DefaultConnectDelay,
		"connect_timeout": DefaultConnectTimeout,
		"max_sessions":    DefaultMaxSessions,
	}
}

// applyUnitDefaults fills settings absent from every source, so an explicit
// zero (e.g. connect_retries: 0) is kept.
func applyUnitDefaults(k *koanf.Koanf, unit string) error {
	for key, val := range unitDefaults() {
		path := fmt.Sprintf("units.%s.%s", unit, key)
		if k.Exists(path) {
			continue
		}
		if err := k.Set(path, val); err != nil {
			return fmt.Errorf("failed to set default %s: %w", path, err)
		}
	}
	return nil
}
