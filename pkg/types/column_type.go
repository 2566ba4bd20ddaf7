package types

import (
	"fmt"
	"strings"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// ColumnType is the kind shared by every non-absent value of a column.
// The set is closed and carries no promotion order.
type ColumnType uint8

const (
	// TypeBoolean columns hold true/false values
	TypeBoolean ColumnType = iota + 1

	// TypeInteger columns hold 64-bit signed integers
	TypeInteger

	// TypeFloat columns hold double-precision floats
	TypeFloat

	// TypeDate columns hold calendar dates (YYYY-MM-DD)
	TypeDate

	// TypeText columns hold UTF-8 strings
	TypeText
)

// ColumnTypes lists every column type in declaration order.
var ColumnTypes = []ColumnType{TypeBoolean, TypeInteger, TypeFloat, TypeDate, TypeText}

// String returns the upper-case name of the column type.
func (t ColumnType) String() string {
	switch t {
	case TypeBoolean:
		return "BOOLEAN"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeDate:
		return "DATE"
	case TypeText:
		return "TEXT"
	default:
		return fmt.Sprintf("ColumnType(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the declared column types.
func (t ColumnType) Valid() bool {
	return t >= TypeBoolean && t <= TypeText
}

// ParseColumnType parses a column type name. Matching is case-insensitive and
// accepts the short aliases bool, int, float, date, str and string.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return TypeBoolean, nil
	case "integer", "int":
		return TypeInteger, nil
	case "float", "double":
		return TypeFloat, nil
	case "date":
		return TypeDate, nil
	case "text", "str", "string":
		return TypeText, nil
	default:
		return 0, terrors.NewInvalidArgument("unknown column type %q (use BOOLEAN, INTEGER, FLOAT, DATE or TEXT)", s)
	}
}
