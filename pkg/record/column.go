package record

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the declared type of a column.
type Type uint8

// Column types.
const (
	TypeUnknown Type = iota
	TypeInt
	TypeFloat
	TypeDecimal
	TypeString
	TypeBool
	TypeBytes
	TypeTime
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDecimal:
		return "decimal"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeBytes:
		return "bytes"
	case TypeTime:
		return "time"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Column describes one column as resolved from the schema catalog.
// Index is the ordinal used with Get and Set.
type Column struct {
	Index      int    `json:"index" yaml:"index"`
	Name       string `json:"name" yaml:"name"`
	Type       Type   `json:"type" yaml:"type"`
	SQLType    string `json:"sql_type" yaml:"sql_type"`
	Nullable   bool   `json:"nullable" yaml:"nullable"`
	PrimaryKey bool   `json:"primary_key" yaml:"primary_key"`
}

// Coerce checks v against the column's declared type and returns the value
// in its canonical representation: int64, float64, decimal.Decimal, string,
// bool, []byte or time.Time. Integer values are accepted by numeric columns.
func (c Column) Coerce(v any) (any, error) {
	if v == nil {
		if c.Nullable || c.Type == TypeUnknown {
			return nil, nil
		}
		return nil, c.mismatch(v)
	}

	switch c.Type {
	case TypeUnknown:
		return v, nil
	case TypeInt:
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case TypeFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		}
		if n, ok := toInt64(v); ok {
			return float64(n), nil
		}
	case TypeDecimal:
		switch x := v.(type) {
		case decimal.Decimal:
			return x, nil
		case *decimal.Decimal:
			if x != nil {
				return *x, nil
			}
		case float64:
			return decimal.NewFromFloat(x), nil
		case float32:
			return decimal.NewFromFloat32(x), nil
		}
		if n, ok := toInt64(v); ok {
			return decimal.NewFromInt(n), nil
		}
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeBytes:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	case TypeTime:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	}
	return nil, c.mismatch(v)
}

// FromDriver converts a value scanned from a database/sql driver into the
// column's canonical representation. It is more lenient than Coerce because
// drivers differ in how they report numeric and text columns.
func (c Column) FromDriver(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch c.Type {
	case TypeString:
		switch x := v.(type) {
		case []byte:
			return string(x), nil
		case string:
			return x, nil
		}
		return fmt.Sprint(v), nil
	case TypeInt:
		switch x := v.(type) {
		case []byte:
			return parseInt(c, string(x))
		case string:
			return parseInt(c, x)
		case float64:
			if x == math.Trunc(x) {
				return int64(x), nil
			}
		}
	case TypeFloat:
		switch x := v.(type) {
		case []byte:
			return parseFloat(c, string(x))
		case string:
			return parseFloat(c, x)
		}
	case TypeDecimal:
		switch x := v.(type) {
		case []byte:
			return parseDecimal(c, string(x))
		case string:
			return parseDecimal(c, x)
		case fmt.Stringer:
			return parseDecimal(c, x.String())
		}
	case TypeBool:
		if n, ok := toInt64(v); ok {
			return n != 0, nil
		}
	case TypeBytes:
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	case TypeTime:
		if s, ok := v.(string); ok {
			return parseTime(c, s)
		}
	}
	return c.Coerce(v)
}

func (c Column) mismatch(v any) error {
	got := "nil"
	if v != nil {
		got = fmt.Sprintf("%T", v)
	}
	return &TypeMismatchError{Column: c.Name, Want: c.Type, Got: got}
}

func parseInt(c Column, s string) (any, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, c.mismatch(s)
	}
	return n, nil
}

func parseFloat(c Column, s string) (any, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, c.mismatch(s)
	}
	return f, nil
}

func parseDecimal(c Column, s string) (any, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, c.mismatch(s)
	}
	return d, nil
}

// timeLayouts are the text forms drivers use for timestamps stored as strings.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTime(c Column, s string) (any, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, c.mismatch(s)
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return 0, false
}
