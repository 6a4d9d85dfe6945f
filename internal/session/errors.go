package session

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNoTable is returned for a record type that does not map to a table.
	ErrNoTable = errors.New("record type does not map to a table")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrFactoryClosed is returned by Open after the factory was closed.
	ErrFactoryClosed = errors.New("session factory is closed")

	// ErrForeignDelegate is returned when a record is bound to a delegate
	// that this session did not create.
	ErrForeignDelegate = errors.New("record is bound to a delegate from another session")

	// ErrRowNotFound is returned when an update or delete matches no row.
	ErrRowNotFound = errors.New("row not found")
)

// KeyError reports primary key values that do not match the table's key.
type KeyError struct {
	Table  string
	Want   int
	Got    int
	Column string
}

func (e *KeyError) Error() string {
	switch {
	case e.Column != "":
		return fmt.Sprintf("table %s: primary key column %s is not set", e.Table, e.Column)
	case e.Want == 0:
		return fmt.Sprintf("table %s has no primary key\nHint: lookups by key need a PRIMARY KEY constraint", e.Table)
	default:
		return fmt.Sprintf("table %s: primary key has %d columns, got %d values", e.Table, e.Want, e.Got)
	}
}
