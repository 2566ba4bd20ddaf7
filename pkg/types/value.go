// Package types provides the core data types of tabular: column types,
// typed cell values and the coercion rules between them.
package types

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies which payload a Value carries.
type Kind uint8

const (
	// KindNull marks an absent value
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDate
	KindText
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindText:
		return "text"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k <= KindText
}

// Value is a single table cell. The zero Value is absent.
// Only the field matching kind is meaningful.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	d    Date
	s    string
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// DateOf returns a date value. Out-of-range months and days are normalized
// as NewDate does, so Date{2023, 2, 30} holds 2023-03-02.
func DateOf(d Date) Value { return Value{kind: KindDate, d: NewDate(d.Year, d.Month, d.Day)} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Kind returns the payload kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Type maps v to its column type. Absent values have no type.
func (v Value) Type() (ColumnType, bool) {
	switch v.kind {
	case KindBool:
		return TypeBoolean, true
	case KindInt:
		return TypeInteger, true
	case KindFloat:
		return TypeFloat, true
	case KindDate:
		return TypeDate, true
	case KindText:
		return TypeText, true
	default:
		return 0, false
	}
}

// AsBool, AsInt, AsFloat, AsDate and AsText return the payload of v and
// whether v holds that kind.
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)     { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) AsDate() (Date, bool)     { return v.d, v.kind == KindDate }
func (v Value) AsText() (string, bool)   { return v.s, v.kind == KindText }

// Number returns the numeric payload of an Int or Float value.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Equal reports structural equality: same kind and same payload.
// Floats compare by bit pattern so NaN equals itself.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return math.Float64bits(v.f) == math.Float64bits(other.f)
	case KindDate:
		return v.d == other.d
	default:
		return v.s == other.s
	}
}

// String renders v for display and delimited text.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindDate:
		return v.d.String()
	default:
		return v.s
	}
}

// formatFloat renders floats positionally and keeps a trailing ".0" on whole
// values so they stay recognizable as floats when printed.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Compare orders a against b. Int and Float compare numerically across kinds,
// booleans order false before true, dates chronologically and text bytewise.
// ok is false when the pair is not comparable: either side absent, or two
// different non-numeric kinds.
func Compare(a, b Value) (cmp int, ok bool) {
	if a.kind == KindNull || b.kind == KindNull {
		return 0, false
	}
	if an, aok := a.Number(); aok {
		bn, bok := b.Number()
		if !bok {
			return 0, false
		}
		if a.kind == KindInt && b.kind == KindInt {
			return cmpInt64(a.i, b.i), true
		}
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		case an == bn:
			return 0, true
		default:
			return 0, false // NaN
		}
	}
	if a.kind != b.kind {
		return 0, false
	}
	switch a.kind {
	case KindBool:
		switch {
		case a.b == b.b:
			return 0, true
		case !a.b:
			return -1, true
		default:
			return 1, true
		}
	case KindDate:
		return a.d.Compare(b.d), true
	default:
		return strings.Compare(a.s, b.s), true
	}
}

// Equivalent reports whether a and b hold the same value, comparing Int and
// Float numerically. Unlike Equal, 5 and 5.0 are equivalent.
func Equivalent(a, b Value) bool {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == b.kind
	}
	if c, ok := Compare(a, b); ok {
		return c == 0
	}
	return false
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Row is one record: a value per column, in column order.
type Row []Value

// Clone returns a copy of r that shares no storage with it.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Equal reports whether both rows hold structurally equal values.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if !r[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// TextRow converts raw strings to a row of Text values.
func TextRow(fields ...string) Row {
	row := make(Row, len(fields))
	for i, f := range fields {
		row[i] = Text(f)
	}
	return row
}
