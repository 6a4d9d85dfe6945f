package record

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Index resolves column names to ordinals. Build it once per table and keep
// name lookups off the Get/Set path.
type Index struct {
	exact  map[string]int
	folded map[string]int
}

// NewIndex builds an Index over cols. Names are matched case-insensitively,
// as SQL identifiers are.
func NewIndex(cols []Column) Index {
	fold := cases.Fold()
	x := Index{
		exact:  make(map[string]int, len(cols)),
		folded: make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		x.exact[c.Name] = c.Index
		x.folded[fold.String(c.Name)] = c.Index
	}
	return x
}

// Ordinal returns the ordinal of the named column.
func (x Index) Ordinal(name string) (int, bool) {
	if i, ok := x.exact[name]; ok {
		return i, true
	}
	// A Caser carries state, so fold with a fresh one.
	i, ok := x.folded[cases.Fold().String(name)]
	return i, ok
}

// MustOrdinal is like Ordinal but panics if the column does not exist.
// It is meant for mapping tables built at startup.
func (x Index) MustOrdinal(name string) int {
	i, ok := x.Ordinal(name)
	if !ok {
		panic(fmt.Sprintf("record: no column named %q", name))
	}
	return i
}

// Len returns the number of indexed columns.
func (x Index) Len() int {
	return len(x.exact)
}

// Value reads column i of r as a T.
func Value[T any](r *Record, i int) (T, error) {
	var zero T
	v, err := r.Get(i)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		name := fmt.Sprintf("#%d", i)
		if cols, err := r.Columns(); err == nil && i >= 0 && i < len(cols) {
			name = cols[i].Name
		}
		return zero, &TypeMismatchError{Column: name, Want: typeOf(zero), Got: fmt.Sprintf("%T", v)}
	}
	return t, nil
}

func typeOf(v any) Type {
	switch v.(type) {
	case int64:
		return TypeInt
	case float64:
		return TypeFloat
	case string:
		return TypeString
	case bool:
		return TypeBool
	case []byte:
		return TypeBytes
	case decimal.Decimal:
		return TypeDecimal
	case time.Time:
		return TypeTime
	default:
		return TypeUnknown
	}
}
