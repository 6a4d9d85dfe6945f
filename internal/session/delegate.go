package session

import (
	"log/slog"
	"sync/atomic"

	"github.com/leapstack-labs/leaprecord/internal/catalog"
	"github.com/leapstack-labs/leaprecord/pkg/record"
)

// bitset marks columns by ordinal.
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) set(i int)      { b[i/64] |= 1 << (uint(i) % 64) }
func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }

func (b bitset) clear() {
	for i := range b {
		b[i] = 0
	}
}

func (b bitset) empty() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}

// rowDelegate buffers one row of one table for a session.
type rowDelegate struct {
	session *Session
	table   *catalog.Table

	values []any
	dirty  bitset

	// key holds the primary key the row was loaded or persisted with.
	key   []any
	found record.Found

	state atomic.Int32
}

func newRowDelegate(s *Session, t *catalog.Table) *rowDelegate {
	d := &rowDelegate{
		session: s,
		table:   t,
		values:  make([]any, len(t.Columns)),
		dirty:   newBitset(len(t.Columns)),
	}
	d.state.Store(int32(record.StateActive))
	return d
}

// Get implements record.Delegate.
func (d *rowDelegate) Get(i int) (any, error) {
	if err := d.check("get", i); err != nil {
		return nil, err
	}
	return d.values[i], nil
}

// Set implements record.Delegate.
func (d *rowDelegate) Set(i int, v any) error {
	if err := d.check("set", i); err != nil {
		return err
	}
	cv, err := d.table.Columns[i].Coerce(v)
	if err != nil {
		return err
	}
	d.values[i] = cv
	d.dirty.set(i)
	return nil
}

// Columns implements record.Delegate.
func (d *rowDelegate) Columns() ([]record.Column, error) {
	return d.table.ColumnsCopy(), nil
}

// Found implements record.Delegate.
func (d *rowDelegate) Found() record.Found {
	return d.found
}

// Release implements record.Delegate. Only the first call has an effect.
func (d *rowDelegate) Release() error {
	if !d.state.CompareAndSwap(int32(record.StateActive), int32(record.StateReleased)) {
		return nil
	}
	d.values = nil
	d.key = nil
	d.session.detach(d)
	d.session.logger.Debug("delegate released", slog.String("table", d.table.Qualified()))
	return nil
}

func (d *rowDelegate) released() bool {
	return record.State(d.state.Load()) == record.StateReleased
}

func (d *rowDelegate) check(op string, i int) error {
	if d.released() {
		return &record.StaleSessionError{Table: d.table.Name, Op: op}
	}
	if i < 0 || i >= len(d.table.Columns) {
		return &record.ColumnError{Table: d.table.Name, Index: i, Count: len(d.table.Columns)}
	}
	return nil
}

// setFound moves the lookup result; a known result never reverts to unknown.
func (d *rowDelegate) setFound(f record.Found) {
	if d.found.Known() && !f.Known() {
		return
	}
	d.found = f
}

// keyValues returns the key the row is stored under: the loaded or persisted
// key when there is one, else the key columns' current values.
func (d *rowDelegate) keyValues() ([]any, error) {
	if d.key != nil {
		return d.key, nil
	}
	if len(d.table.Key) == 0 {
		return nil, &KeyError{Table: d.table.Name}
	}
	key := make([]any, len(d.table.Key))
	for i, ord := range d.table.Key {
		if !d.dirty.has(ord) || d.values[ord] == nil {
			return nil, &KeyError{Table: d.table.Name, Column: d.table.Columns[ord].Name}
		}
		key[i] = d.values[ord]
	}
	return key, nil
}

// snapshotKey records the current key column values as the stored key.
func (d *rowDelegate) snapshotKey() {
	if len(d.table.Key) == 0 {
		return
	}
	d.key = make([]any, len(d.table.Key))
	for i, ord := range d.table.Key {
		d.key[i] = d.values[ord]
	}
}

var _ record.Delegate = (*rowDelegate)(nil)
