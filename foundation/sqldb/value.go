package sqldb

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a SQL literal ready to be placed in a statement. The set of
// values is closed: use Null, Raw, String, Int, Uint, or Float to construct
// one, or Builder.ValueOf to classify an untyped value.
type Value interface {
	SQL() string
	value()
}

type nullValue struct {
	text string
}

// Null returns the SQL NULL literal.
func Null() Value {
	return nullValue{text: "NULL"}
}

func (v nullValue) SQL() string { return v.text }
func (nullValue) value()        {}

type rawValue string

// Raw returns an expression that is placed into the statement as is, such
// as a STR_TO_DATE call or NOW().
func Raw(expr string) Value {
	return rawValue(expr)
}

func (v rawValue) SQL() string { return string(v) }
func (rawValue) value()        {}

type stringValue string

// String returns a quoted string literal.
func String(s string) Value {
	return stringValue(s)
}

func (v stringValue) SQL() string { return quote(string(v)) }
func (stringValue) value()        {}

type numberValue string

// Int returns an integer literal.
func Int(n int64) Value {
	return numberValue(strconv.FormatInt(n, 10))
}

// Uint returns an unsigned integer literal.
func Uint(n uint64) Value {
	return numberValue(strconv.FormatUint(n, 10))
}

// Float returns a floating point literal.
func Float(f float64) Value {
	return numberValue(strconv.FormatFloat(f, 'f', -1, 64))
}

func (v numberValue) SQL() string { return string(v) }
func (numberValue) value()        {}

// =============================================================================

// DefaultRawMarkers is the set of substrings that mark a string as an
// expression rather than a literal.
var DefaultRawMarkers = []string{"STR_TO_DATE"}

// Builder constructs SQL text. RawMarkers controls how ValueOf classifies
// strings.
type Builder struct {
	RawMarkers []string
}

// NewBuilder constructs a builder using the specified raw markers, or
// DefaultRawMarkers when none are provided.
func NewBuilder(rawMarkers ...string) Builder {
	if len(rawMarkers) == 0 {
		rawMarkers = DefaultRawMarkers
	}

	return Builder{
		RawMarkers: rawMarkers,
	}
}

// ValueOf classifies an untyped value.
//
//	nil                          -> Null
//	"NULL" in any case           -> Null, keeping the original text
//	string holding a raw marker  -> Raw
//	any other string             -> String
//	integer and float kinds      -> number
//	time.Time                    -> STR_TO_DATE expression
//	anything else                -> its fmt representation, unquoted
func (b Builder) ValueOf(v any) Value {
	switch v := v.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case string:
		return b.classify(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return Uint(uint64(v))
	case uint8:
		return Uint(uint64(v))
	case uint16:
		return Uint(uint64(v))
	case uint32:
		return Uint(uint64(v))
	case uint64:
		return Uint(v)
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case time.Time:
		return Raw(TimeExpr(v, DefaultSeparators))
	}

	return Raw(fmt.Sprint(v))
}

// Values classifies each value in a row.
func (b Builder) Values(row ...any) []Value {
	values := make([]Value, len(row))
	for i, v := range row {
		values[i] = b.ValueOf(v)
	}
	return values
}

func (b Builder) classify(s string) Value {
	upper := strings.ToUpper(s)
	if upper == "NULL" {
		return nullValue{text: s}
	}

	for _, marker := range b.RawMarkers {
		if strings.Contains(upper, strings.ToUpper(marker)) {
			return Raw(s)
		}
	}

	return String(s)
}

// quote wraps s in single quotes. Embedded quotes are doubled and
// backslashes escaped for MySQL's default sql_mode.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `''`)
	return "'" + s + "'"
}
