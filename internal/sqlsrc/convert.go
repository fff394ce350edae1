package sqlsrc

import (
	"reflect"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tordrt/graphmigrate/internal/value"
)

// convertDriverValue implements the spec §6 source-type conversion
// table for whatever a driver hands back from a generic (any) scan:
// bool, any signed/unsigned integer width, any float width, strings
// and byte slices (drivers commonly return TEXT/VARCHAR columns as
// []byte), one-dimensional (and, recursively, nested) slices of the
// above, nil, and an "anything else" fallback to the default Go string
// representation.
//
// pgx has no native Go type for PostgreSQL's arbitrary-precision
// NUMERIC/DECIMAL, so it hands back a pgtype.Numeric instead of a
// float64; that's special-cased here rather than falling through to
// the reflect switch below, matching spec.md's "numeric -> double" row
// and original_source/mg_migrate/src/postgresql.cpp's
// kNumeric -> field.as<double>() conversion.
func convertDriverValue(v any) value.Value {
	if v == nil {
		return value.Null()
	}

	switch t := v.(type) {
	case bool:
		return value.FromBool(t)
	case []byte:
		return value.FromString(string(t))
	case string:
		return value.FromString(t)
	case pgtype.Numeric:
		if f, ok := numericToFloat64(t); ok {
			return value.FromFloat64(f)
		}
		return value.Null()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return value.FromBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.FromInt64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.FromInt64(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return value.FromFloat64(rv.Float())
	case reflect.String:
		return value.FromString(rv.String())
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		elems := make([]value.Value, n)
		for i := 0; i < n; i++ {
			elems[i] = convertDriverValue(rv.Index(i).Interface())
		}
		return value.FromList(elems)
	case reflect.Ptr:
		if rv.IsNil() {
			return value.Null()
		}
		return convertDriverValue(rv.Elem().Interface())
	default:
		return value.FromUnknown(v)
	}
}

// numericToFloat64 converts a pgtype.Numeric to a double, reporting
// false for SQL NULL or a value pgx cannot convert; both fall back to
// the null value at the call site. NUMERIC's NaN and ±Infinity convert
// to the matching float64 values.
func numericToFloat64(n pgtype.Numeric) (float64, bool) {
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}

// convertMySQLValue implements the spec §6 conversion table for a
// database/sql scan result from the MySQL driver, given the column's
// DatabaseTypeName. database/sql has no native representation for
// DECIMAL/NUMERIC either: the driver returns the decimal's textual
// form as a []byte, which convertDriverValue's generic []byte case
// would otherwise treat as an opaque string. Parsing it to a double
// here instead matches original_source/src/source/mysql.cpp's DECIMAL
// handling, which converts the same column class to a double.
func convertMySQLValue(v any, dbType string) value.Value {
	if dbType == "DECIMAL" {
		if f, ok := parseDecimalBytes(v); ok {
			return value.FromFloat64(f)
		}
	}
	return convertDriverValue(v)
}

func parseDecimalBytes(v any) (float64, bool) {
	var s string
	switch t := v.(type) {
	case []byte:
		s = string(t)
	case string:
		s = t
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
