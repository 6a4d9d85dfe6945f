package catalog

import (
	"strings"

	"github.com/leapstack-labs/leaprecord/pkg/record"
)

var baseTypes = map[string]record.Type{
	"INT": record.TypeInt, "INTEGER": record.TypeInt, "BIGINT": record.TypeInt,
	"SMALLINT": record.TypeInt, "TINYINT": record.TypeInt, "MEDIUMINT": record.TypeInt,
	"INT2": record.TypeInt, "INT4": record.TypeInt, "INT8": record.TypeInt,
	"UINTEGER": record.TypeInt, "USMALLINT": record.TypeInt, "UTINYINT": record.TypeInt,
	"SERIAL": record.TypeInt, "BIGSERIAL": record.TypeInt, "SMALLSERIAL": record.TypeInt,

	"REAL": record.TypeFloat, "FLOAT": record.TypeFloat, "FLOAT4": record.TypeFloat,
	"FLOAT8": record.TypeFloat, "DOUBLE": record.TypeFloat, "DOUBLE PRECISION": record.TypeFloat,

	"DECIMAL": record.TypeDecimal, "NUMERIC": record.TypeDecimal, "MONEY": record.TypeDecimal,
	// Integers wider than int64.
	"HUGEINT": record.TypeDecimal, "UHUGEINT": record.TypeDecimal, "UBIGINT": record.TypeDecimal,
	"INT128": record.TypeDecimal,

	"TEXT": record.TypeString, "VARCHAR": record.TypeString, "CHAR": record.TypeString,
	"CHARACTER": record.TypeString, "CHARACTER VARYING": record.TypeString,
	"NVARCHAR": record.TypeString, "NCHAR": record.TypeString, "BPCHAR": record.TypeString,
	"CLOB": record.TypeString, "STRING": record.TypeString, "CITEXT": record.TypeString,
	"NAME": record.TypeString, "UUID": record.TypeString, "JSON": record.TypeString,
	"JSONB": record.TypeString,

	"BOOLEAN": record.TypeBool, "BOOL": record.TypeBool,

	"BLOB": record.TypeBytes, "BYTEA": record.TypeBytes, "VARBINARY": record.TypeBytes,
	"BINARY": record.TypeBytes,

	"DATE": record.TypeTime, "TIME": record.TypeTime, "DATETIME": record.TypeTime,
	"TIMESTAMP": record.TypeTime, "TIMESTAMPTZ": record.TypeTime, "TIMETZ": record.TypeTime,
	"TIMESTAMP WITH TIME ZONE":    record.TypeTime,
	"TIMESTAMP WITHOUT TIME ZONE": record.TypeTime,
	"TIME WITH TIME ZONE":         record.TypeTime,
	"TIME WITHOUT TIME ZONE":      record.TypeTime,
}

// ParseType maps a declared SQL type to a record.Type. Length and precision
// arguments are ignored. Names not in the known set fall back to SQLite's
// affinity rules, and anything else is TypeUnknown.
func ParseType(sqlType string) record.Type {
	base := strings.ToUpper(strings.TrimSpace(sqlType))
	if i := strings.IndexByte(base, '('); i >= 0 {
		// "NUMERIC(12,2)" or "TIMESTAMP(3) WITH TIME ZONE"
		if j := strings.IndexByte(base[i:], ')'); j >= 0 {
			base = strings.TrimSpace(base[:i]) + " " + strings.TrimSpace(base[i+j+1:])
		} else {
			base = base[:i]
		}
	}
	base = strings.Join(strings.Fields(strings.TrimSuffix(strings.TrimSpace(base), " UNSIGNED")), " ")

	if t, ok := baseTypes[base]; ok {
		return t
	}

	// https://www.sqlite.org/datatype3.html#determination_of_column_affinity
	switch {
	case strings.Contains(base, "INT") && !strings.Contains(base, "INTERVAL") && !strings.Contains(base, "POINT"):
		return record.TypeInt
	case strings.Contains(base, "CHAR"), strings.Contains(base, "CLOB"), strings.Contains(base, "TEXT"):
		return record.TypeString
	case strings.Contains(base, "BLOB"):
		return record.TypeBytes
	case strings.Contains(base, "REAL"), strings.Contains(base, "FLOA"), strings.Contains(base, "DOUB"):
		return record.TypeFloat
	}
	return record.TypeUnknown
}
