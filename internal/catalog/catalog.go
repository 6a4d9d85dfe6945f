// Package catalog resolves table layouts into record column metadata and
// caches them for the lifetime of a session factory.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/leapstack-labs/leaprecord/pkg/adapter"
	"github.com/leapstack-labs/leaprecord/pkg/record"
)

// Table is the resolved layout of one table.
type Table struct {
	Schema  string
	Name    string
	Columns []record.Column

	// Key holds the ordinals of the primary key columns.
	Key []int

	index record.Index
}

// Ordinal returns the column index for name, matched case-insensitively.
func (t *Table) Ordinal(name string) (int, bool) {
	return t.index.Ordinal(name)
}

// Qualified returns schema.name.
func (t *Table) Qualified() string {
	return t.Schema + "." + t.Name
}

// ColumnsCopy returns a copy of the column metadata safe to hand to callers.
func (t *Table) ColumnsCopy() []record.Column {
	return append([]record.Column(nil), t.Columns...)
}

// Catalog caches table layouts read through an adapter.
type Catalog struct {
	adapter adapter.Adapter
	logger  *slog.Logger

	mu     sync.RWMutex
	tables map[string]*Table
	group  singleflight.Group
}

// New creates a catalog over a connected adapter.
// If logger is nil, a discard logger is used.
func New(a adapter.Adapter, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Catalog{
		adapter: a,
		logger:  logger,
		tables:  make(map[string]*Table),
	}
}

// Table returns the layout of the named table, reading it from the backend
// on first use. Concurrent first lookups of one table share a single read.
func (c *Catalog) Table(ctx context.Context, name string) (*Table, error) {
	c.mu.RLock()
	t, ok := c.tables[name]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.tables[name]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		t, err := c.load(ctx, name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tables[name] = t
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Invalidate drops the cached layout of the named table.
func (c *Catalog) Invalidate(name string) {
	c.mu.Lock()
	delete(c.tables, name)
	c.mu.Unlock()
	c.group.Forget(name)
}

// Len returns the number of cached tables.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

func (c *Catalog) load(ctx context.Context, name string) (*Table, error) {
	meta, err := c.adapter.GetTableMetadata(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve table %s: %w", name, err)
	}

	t := &Table{
		Schema:  meta.Schema,
		Name:    meta.Name,
		Columns: make([]record.Column, len(meta.Columns)),
	}
	for i, mc := range meta.Columns {
		t.Columns[i] = record.Column{
			Index:      i,
			Name:       mc.Name,
			Type:       ParseType(mc.Type),
			SQLType:    mc.Type,
			Nullable:   mc.Nullable,
			PrimaryKey: mc.PrimaryKey,
		}
		if mc.PrimaryKey {
			t.Key = append(t.Key, i)
		}
	}
	t.index = record.NewIndex(t.Columns)

	c.logger.Debug("resolved table",
		slog.String("table", t.Qualified()),
		slog.Int("columns", len(t.Columns)),
		slog.Int("key_columns", len(t.Key)))

	return t, nil
}
