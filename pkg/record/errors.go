package record

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below match them with errors.Is.
var (
	// ErrUnbound is returned when a record is used before a delegate is bound.
	ErrUnbound = errors.New("record is not bound to a delegate")

	// ErrInvalidColumn is returned for an ordinal outside the delegate's columns.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrTypeMismatch is returned when a value does not fit the column's declared type.
	ErrTypeMismatch = errors.New("value type does not match column type")

	// ErrStaleSession is returned by a delegate that has been released.
	ErrStaleSession = errors.New("delegate session is no longer active")
)

// UnboundRecordError reports an operation on a record without a delegate.
type UnboundRecordError struct {
	Op string
}

func (e *UnboundRecordError) Error() string {
	return fmt.Sprintf("record %s: %v\nHint: records are bound by the session that loads or creates them", e.Op, ErrUnbound)
}

func (e *UnboundRecordError) Is(target error) bool { return target == ErrUnbound }

// ColumnError reports an ordinal outside [0, Count).
type ColumnError struct {
	Table string
	Index int
	Count int
}

func (e *ColumnError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%v %d for table %s (%d columns)", ErrInvalidColumn, e.Index, e.Table, e.Count)
	}
	return fmt.Sprintf("%v %d (%d columns)", ErrInvalidColumn, e.Index, e.Count)
}

func (e *ColumnError) Is(target error) bool { return target == ErrInvalidColumn }

// TypeMismatchError reports a value incompatible with a column's declared type.
type TypeMismatchError struct {
	Column string
	Want   Type
	Got    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %s: cannot use value of type %s as %s", e.Column, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// StaleSessionError reports use of a released delegate.
type StaleSessionError struct {
	Table string
	Op    string
}

func (e *StaleSessionError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s on table %s: %v", e.Op, e.Table, ErrStaleSession)
	}
	return fmt.Sprintf("%s: %v", e.Op, ErrStaleSession)
}

func (e *StaleSessionError) Is(target error) bool { return target == ErrStaleSession }
