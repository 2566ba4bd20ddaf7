// Package inference derives a column type from the values of a column.
//
// Two heuristics are provided. Declared reports what a column already holds
// and is used on typed tables. Detect guesses a type for raw, mostly textual
// data such as freshly parsed delimited text. Both ignore absent values and
// judge a column as a whole: one value that does not fit moves the entire
// column to Text.
package inference

import (
	"math"
	"strconv"

	"github.com/arkilian/tabular/pkg/types"
)

// dateCheck is the outcome of trying to read a whole column as dates.
type dateCheck int

const (
	// notDates: some value is neither a date nor date-shaped text
	notDates dateCheck = iota
	// allDates: every value is a date or parses as YYYY-MM-DD
	allDates
	// badDate: a date-shaped (length 10) text value failed to parse
	badDate
)

// Declared reports the column type of values already held by a column.
//
// If every non-absent value has the same kind that kind is reported, after
// trying to promote the column to Date. Mixed kinds report Text without a
// Date attempt. A column with no values reports Text.
func Declared(values []types.Value) types.ColumnType {
	sample := nonNull(values)
	if len(sample) == 0 {
		return types.TypeText
	}

	uniform, _ := sample[0].Type()
	for _, v := range sample[1:] {
		if t, _ := v.Type(); t != uniform {
			return types.TypeText
		}
	}

	switch checkDates(sample) {
	case allDates:
		return types.TypeDate
	case badDate:
		return types.TypeText
	default:
		return uniform
	}
}

// Detect guesses a column type for raw values, testing candidates in the
// fixed order Boolean, Integer, Float and then re-checking Date, which
// overrides the earlier choice. Text is the fallback.
func Detect(values []types.Value) types.ColumnType {
	sample := nonNull(values)
	if len(sample) == 0 {
		return types.TypeText
	}

	detected := types.TypeText
	switch {
	case all(sample, isBoolLiteral):
		detected = types.TypeBoolean
	case all(sample, isNumeric):
		detected = numericType(sample)
	}

	switch checkDates(sample) {
	case allDates:
		return types.TypeDate
	case badDate:
		return types.TypeText
	default:
		return detected
	}
}

// DetectRows runs Detect over every column of rows. width is the column
// count; rows shorter than width contribute absent values.
func DetectRows(rows []types.Row, width int) []types.ColumnType {
	out := make([]types.ColumnType, width)
	column := make([]types.Value, len(rows))
	for c := 0; c < width; c++ {
		for r, row := range rows {
			if c < len(row) {
				column[r] = row[c]
			} else {
				column[r] = types.Null()
			}
		}
		out[c] = Detect(column)
	}
	return out
}

// DeclaredRows runs Declared over every column of rows.
func DeclaredRows(rows []types.Row, width int) []types.ColumnType {
	out := make([]types.ColumnType, width)
	column := make([]types.Value, len(rows))
	for c := 0; c < width; c++ {
		for r, row := range rows {
			if c < len(row) {
				column[r] = row[c]
			} else {
				column[r] = types.Null()
			}
		}
		out[c] = Declared(column)
	}
	return out
}

func nonNull(values []types.Value) []types.Value {
	out := make([]types.Value, 0, len(values))
	for _, v := range values {
		if !v.IsNull() {
			out = append(out, v)
		}
	}
	return out
}

func all(values []types.Value, pred func(types.Value) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

// isBoolLiteral accepts native booleans, numeric 1/0 and the literals
// yes, no, True, False, 1 and 0.
func isBoolLiteral(v types.Value) bool {
	switch v.Kind() {
	case types.KindBool:
		return true
	case types.KindInt, types.KindFloat:
		n, _ := v.Number()
		return n == 0 || n == 1
	case types.KindText:
		s, _ := v.AsText()
		switch s {
		case "yes", "no", "True", "False", "1", "0":
			return true
		}
	}
	return false
}

// isNumeric accepts native numbers and text made only of ASCII digits with at
// most one decimal point.
func isNumeric(v types.Value) bool {
	switch v.Kind() {
	case types.KindInt, types.KindFloat:
		return true
	case types.KindText:
		s, _ := v.AsText()
		return isDigitText(s)
	}
	return false
}

func isDigitText(s string) bool {
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

// numericType chooses Integer when every value is whole and fits in an
// int64, and Float otherwise. Values that cannot be converted fall back to
// Text.
func numericType(values []types.Value) types.ColumnType {
	whole := true
	for _, v := range values {
		switch v.Kind() {
		case types.KindInt:
			continue
		case types.KindFloat:
			f, _ := v.AsFloat()
			if !fitsInt64(f) {
				whole = false
			}
		default:
			s, _ := v.AsText()
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return types.TypeText
			}
			if !fitsInt64(f) {
				whole = false
			}
		}
	}
	if whole {
		return types.TypeInteger
	}
	return types.TypeFloat
}

// fitsInt64 reports whether f is whole and inside the int64 range.
func fitsInt64(f float64) bool {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return false
	}
	return f >= math.MinInt64 && f < math.MaxInt64
}

// checkDates tries to read every value as a date. Text of exactly
// types.DateTextLen bytes is parsed; any other value counts as a date only if
// it already is one.
func checkDates(values []types.Value) dateCheck {
	result := allDates
	for _, v := range values {
		switch v.Kind() {
		case types.KindDate:
			continue
		case types.KindText:
			s, _ := v.AsText()
			if len(s) == types.DateTextLen {
				if _, err := types.ParseDate(s); err != nil {
					return badDate
				}
				continue
			}
		}
		result = notDates
	}
	return result
}
