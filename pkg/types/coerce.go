package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// Coerce converts v to the target column type. Absent values stay absent for
// every target. A value that cannot be represented in the target type yields
// a COERCION_FAILED error.
func Coerce(v Value, target ColumnType) (Value, error) {
	if v.IsNull() {
		return v, nil
	}
	switch target {
	case TypeBoolean:
		return toBoolean(v)
	case TypeInteger:
		return toInteger(v)
	case TypeFloat:
		return toFloat(v)
	case TypeDate:
		return toDate(v)
	case TypeText:
		if v.kind == KindText {
			return v, nil
		}
		return Text(v.String()), nil
	default:
		return Value{}, terrors.NewCoercionError(fmt.Sprintf("unknown target type %v", target), nil)
	}
}

// CoerceAll converts every value of a column. The input is left untouched and
// no partial result is returned when any value fails.
func CoerceAll(values []Value, target ColumnType) ([]Value, error) {
	out := make([]Value, len(values))
	for i, v := range values {
		c, err := Coerce(v, target)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func toBoolean(v Value) (Value, error) {
	switch v.kind {
	case KindBool:
		return v, nil
	case KindInt:
		return Bool(v.i != 0), nil
	case KindFloat:
		return Bool(v.f != 0), nil
	case KindText:
		if b, ok := ParseBoolLiteral(v.s); ok {
			return Bool(b), nil
		}
	}
	return Value{}, coercionFailed(v, TypeBoolean, nil)
}

func toInteger(v Value) (Value, error) {
	switch v.kind {
	case KindInt:
		return v, nil
	case KindBool:
		if v.b {
			return Int(1), nil
		}
		return Int(0), nil
	case KindFloat:
		if i, ok := truncate(v.f); ok {
			return Int(i), nil
		}
	case KindText:
		s := strings.TrimSpace(v.s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i), nil
		}
		// "200000.0" is what a whole float looks like once written out.
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && f == math.Trunc(f) {
			if i, ok := truncate(f); ok {
				return Int(i), nil
			}
		}
		return Value{}, coercionFailed(v, TypeInteger, err)
	}
	return Value{}, coercionFailed(v, TypeInteger, nil)
}

func toFloat(v Value) (Value, error) {
	switch v.kind {
	case KindFloat:
		return v, nil
	case KindInt:
		return Float(float64(v.i)), nil
	case KindBool:
		if v.b {
			return Float(1), nil
		}
		return Float(0), nil
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return Value{}, coercionFailed(v, TypeFloat, err)
		}
		return Float(f), nil
	}
	return Value{}, coercionFailed(v, TypeFloat, nil)
}

func toDate(v Value) (Value, error) {
	switch v.kind {
	case KindDate:
		return v, nil
	case KindText:
		d, err := ParseDate(v.s)
		if err != nil {
			return Value{}, coercionFailed(v, TypeDate, err)
		}
		return DateOf(d), nil
	}
	return Value{}, coercionFailed(v, TypeDate, nil)
}

// truncate converts f to int64 toward zero, failing outside the int64 range.
func truncate(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, false
	}
	return int64(t), true
}

// ParseBoolLiteral recognizes the textual booleans yes/no, True/False,
// true/false and 1/0.
func ParseBoolLiteral(s string) (value bool, ok bool) {
	switch s {
	case "yes", "True", "true", "1":
		return true, true
	case "no", "False", "false", "0":
		return false, true
	default:
		return false, false
	}
}

func coercionFailed(v Value, target ColumnType, cause error) error {
	return terrors.NewCoercionError(fmt.Sprintf("cannot coerce %s %q to %s", v.kind, v.String(), target), cause).
		WithDetails(map[string]interface{}{"kind": v.kind.String(), "target": target.String()})
}
