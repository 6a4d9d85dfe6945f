package adapter

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Adapter)
	aliases    = make(map[string]string)
)

// Register adds an adapter factory to the registry under name and any
// connectString scheme aliases (e.g., "postgresql" for "postgres").
// Called by adapter implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Adapter, schemeAliases ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
	for _, alias := range schemeAliases {
		aliases[alias] = name
	}
}

// Resolve maps a connectString scheme to a registered adapter name.
func Resolve(scheme string) (string, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if _, ok := registry[scheme]; ok {
		return scheme, true
	}
	name, ok := aliases[scheme]
	return name, ok
}

// Get retrieves an adapter factory by name or scheme alias.
func Get(name string) (func(*slog.Logger) Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	f, ok := registry[name]
	return f, ok
}

// NewAdapter creates a new adapter instance based on config type.
// The logger parameter is passed to the adapter constructor (nil uses discard logger).
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      cfg.Type,
			Available: ListAdapters(),
		}
	}
	return factory(logger), nil
}

// ListAdapters returns all registered adapter names (sorted).
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if an adapter type or scheme alias is registered.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownAdapterError is returned when an unknown adapter type is requested.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q\nAvailable adapters: %v\nHint: Check the scheme of connectString in leaprecord.yaml", e.Type, e.Available)
}

// TableNotFoundError is returned by GetTableMetadata when the table does not
// exist or has no visible columns.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %s not found", e.Table)
}
