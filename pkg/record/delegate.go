package record

// Delegate is the live binding between a Record and the storage of one row in
// one table, scoped to one session. Delegates are owned by the session layer;
// a Record holds a non-owning reference and never shares it with another record.
//
// Implementations must honor the following:
//   - Get and Set are O(1) in the number of columns (ordinal-indexed storage).
//   - Columns returns the same ordered metadata for the delegate's lifetime.
//   - Found is monotonic: once FoundTrue or FoundFalse, it never reverts to FoundUnknown.
//   - Release moves the delegate to a terminal released state. The transition
//     must be atomic and idempotent: repeated calls, calls racing the record
//     cleanup, and calls after the session closed all return nil.
//   - After Release, Get and Set fail with a StaleSessionError and never
//     return previously buffered values.
type Delegate interface {
	// Get returns the value of column i.
	Get(i int) (any, error)

	// Set stores v in column i. A value whose type does not match the
	// column's declared type fails with a TypeMismatchError.
	Set(i int, v any) error

	// Columns returns the column metadata ordered by ordinal.
	Columns() ([]Column, error)

	// Found reports the result of the lookup that produced the delegate.
	Found() Found

	// Release frees the resources held for the row.
	Release() error
}

// State is the lifecycle state of a delegate.
type State int32

// Delegate states. Released is terminal.
const (
	StateUnbound State = iota
	StateActive
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateActive:
		return "active"
	case StateReleased:
		return "released"
	default:
		return "invalid"
	}
}

// Found is the tri-state result of a lookup.
type Found int8

// Lookup results. FoundUnknown means no lookup has run.
const (
	FoundUnknown Found = iota
	FoundTrue
	FoundFalse
)

// FoundOf converts a lookup result to a Found.
func FoundOf(ok bool) Found {
	if ok {
		return FoundTrue
	}
	return FoundFalse
}

// Known reports whether a lookup has resolved the value.
func (f Found) Known() bool {
	return f == FoundTrue || f == FoundFalse
}

// Bool returns the lookup result and whether it is known.
func (f Found) Bool() (found, known bool) {
	return f == FoundTrue, f.Known()
}

func (f Found) String() string {
	switch f {
	case FoundTrue:
		return "true"
	case FoundFalse:
		return "false"
	default:
		return "unknown"
	}
}
