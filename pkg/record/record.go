// Package record provides the dynamic record abstraction used by leaprecord.
//
// A Record has no fixed field list. Its columns are resolved at runtime from
// the metadata of the storage it is bound to, and every field access goes
// through a Delegate by ordinal column index. Concrete record types embed
// Record and declare the table they map to:
//
//	type Account struct {
//		record.Record
//	}
//
//	func (*Account) Table() (string, bool) { return "ACCOUNT", true }
//
// The storage layer constructs the record, binds a delegate to it and hands it
// back to the caller. Callers should release records they are done with
// (defer rec.Release()); a cleanup registered at bind time releases the
// delegate of an unreachable record as a best-effort backstop.
package record

import (
	"runtime"
)

// Record is the base type for dynamically mapped records.
//
// Record is not safe for concurrent use. The session layer that produces the
// delegate is expected to serialize access per session.
type Record struct {
	delegate Delegate
	cleanup  runtime.Cleanup
	tracked  bool
}

// Table returns the logical table name the record maps to. The base
// implementation returns false; record types override it.
func (r *Record) Table() (string, bool) {
	return "", false
}

// Bind attaches d to the record, replacing any prior binding. The previous
// delegate is not released: it belongs to the session that created it.
// Binding nil leaves the record unbound.
func (r *Record) Bind(d Delegate) {
	r.untrack()
	r.delegate = d
	if d != nil {
		r.track(d)
	}
}

// Delegate returns the bound delegate.
func (r *Record) Delegate() (Delegate, error) {
	if r.delegate == nil {
		return nil, &UnboundRecordError{Op: "delegate"}
	}
	return r.delegate, nil
}

// Bound reports whether a delegate is attached.
func (r *Record) Bound() bool {
	return r.delegate != nil
}

// Get returns the value of column i.
func (r *Record) Get(i int) (any, error) {
	if r.delegate == nil {
		return nil, &UnboundRecordError{Op: "get"}
	}
	return r.delegate.Get(i)
}

// Set stores v in column i.
func (r *Record) Set(i int, v any) error {
	if r.delegate == nil {
		return &UnboundRecordError{Op: "set"}
	}
	return r.delegate.Set(i, v)
}

// Columns returns the column metadata of the bound delegate, ordered by ordinal.
func (r *Record) Columns() ([]Column, error) {
	if r.delegate == nil {
		return nil, &UnboundRecordError{Op: "columns"}
	}
	return r.delegate.Columns()
}

// Found reports whether the lookup that produced the record found a row.
// An unbound record reports FoundUnknown along with an UnboundRecordError.
func (r *Record) Found() (Found, error) {
	if r.delegate == nil {
		return FoundUnknown, &UnboundRecordError{Op: "found"}
	}
	return r.delegate.Found(), nil
}

// Release releases the bound delegate and unbinds the record. It is a no-op
// on an unbound record.
func (r *Record) Release() error {
	d := r.delegate
	if d == nil {
		return nil
	}
	r.untrack()
	r.delegate = nil
	return d.Release()
}
