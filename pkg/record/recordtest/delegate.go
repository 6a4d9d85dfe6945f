// Package recordtest provides an in-memory record.Delegate for tests.
package recordtest

import (
	"sync/atomic"

	"github.com/leapstack-labs/leaprecord/pkg/record"
)

// Delegate is an in-memory record.Delegate that counts the calls it receives.
// It follows the delegate contract: ordinal storage, declared-type checks,
// monotonic Found and an atomic, idempotent Release.
type Delegate struct {
	Table string

	// ReleaseErr, when set, is returned by the first effective Release.
	ReleaseErr error

	cols   []record.Column
	values []any
	found  record.Found

	state        atomic.Int32
	releases     atomic.Int32
	releaseCalls atomic.Int32
	gets         atomic.Int32
	sets         atomic.Int32
}

// NewDelegate returns an Active delegate over cols. Column indexes are
// assigned from the argument order.
func NewDelegate(table string, cols ...record.Column) *Delegate {
	owned := make([]record.Column, len(cols))
	for i, c := range cols {
		c.Index = i
		owned[i] = c
	}
	d := &Delegate{
		Table:  table,
		cols:   owned,
		values: make([]any, len(owned)),
	}
	d.state.Store(int32(record.StateActive))
	return d
}

// Get implements record.Delegate.
func (d *Delegate) Get(i int) (any, error) {
	d.gets.Add(1)
	if err := d.check("get", i); err != nil {
		return nil, err
	}
	return d.values[i], nil
}

// Set implements record.Delegate.
func (d *Delegate) Set(i int, v any) error {
	d.sets.Add(1)
	if err := d.check("set", i); err != nil {
		return err
	}
	cv, err := d.cols[i].Coerce(v)
	if err != nil {
		return err
	}
	d.values[i] = cv
	return nil
}

// Columns implements record.Delegate.
func (d *Delegate) Columns() ([]record.Column, error) {
	out := make([]record.Column, len(d.cols))
	copy(out, d.cols)
	return out, nil
}

// Found implements record.Delegate.
func (d *Delegate) Found() record.Found {
	return d.found
}

// SetFound records a lookup result. Once known, the result cannot revert to
// record.FoundUnknown.
func (d *Delegate) SetFound(f record.Found) {
	if d.found.Known() && !f.Known() {
		return
	}
	d.found = f
}

// Release implements record.Delegate.
func (d *Delegate) Release() error {
	d.releaseCalls.Add(1)
	if !d.state.CompareAndSwap(int32(record.StateActive), int32(record.StateReleased)) {
		return nil
	}
	d.releases.Add(1)
	d.values = nil
	return d.ReleaseErr
}

// State returns the lifecycle state.
func (d *Delegate) State() record.State {
	return record.State(d.state.Load())
}

// Releases returns how many Release calls performed the transition to
// released. It never exceeds one.
func (d *Delegate) Releases() int {
	return int(d.releases.Load())
}

// ReleaseCalls returns how many times Release was called.
func (d *Delegate) ReleaseCalls() int {
	return int(d.releaseCalls.Load())
}

// Gets returns how many times Get was called.
func (d *Delegate) Gets() int {
	return int(d.gets.Load())
}

// Sets returns how many times Set was called.
func (d *Delegate) Sets() int {
	return int(d.sets.Load())
}

func (d *Delegate) check(op string, i int) error {
	if d.State() == record.StateReleased {
		return &record.StaleSessionError{Table: d.Table, Op: op}
	}
	if i < 0 || i >= len(d.cols) {
		return &record.ColumnError{Table: d.Table, Index: i, Count: len(d.cols)}
	}
	return nil
}
