package table

import (
	"fmt"

	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// Operator is a pairwise column comparison.
type Operator int

const (
	OpEq Operator = iota
	OpGt
	OpLt
	OpGe
	OpLe
	OpNe
)

// String returns the operator symbol.
func (op Operator) String() string {
	switch op {
	case OpEq:
		return "="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpGe:
		return ">="
	case OpLe:
		return "<="
	case OpNe:
		return "!="
	default:
		return fmt.Sprintf("Operator(%d)", int(op))
	}
}

// Compare evaluates op between two columns on every row and returns one
// result per row. Equality never fails: values of different kinds are
// unequal, except Int and Float which compare numerically. Ordering fails
// with a coercion error on a row whose values are not comparable.
func (t *Table) Compare(a, b Ref, op Operator) ([]bool, error) {
	left, err := t.resolve(a)
	if err != nil {
		return nil, err
	}
	right, err := t.resolve(b)
	if err != nil {
		return nil, err
	}

	out := make([]bool, len(t.rows))
	for i, row := range t.rows {
		x, y := row[left], row[right]
		switch op {
		case OpEq:
			out[i] = types.Equivalent(x, y)
			continue
		case OpNe:
			out[i] = !types.Equivalent(x, y)
			continue
		}

		c, ok := types.Compare(x, y)
		if !ok {
			return nil, terrors.NewCoercionError(
				fmt.Sprintf("row %d: cannot order %s %q %s %s %q", i, x.Kind(), x.String(), op, y.Kind(), y.String()), nil)
		}
		switch op {
		case OpGt:
			out[i] = c > 0
		case OpLt:
			out[i] = c < 0
		case OpGe:
			out[i] = c >= 0
		case OpLe:
			out[i] = c <= 0
		default:
			return nil, terrors.NewInvalidArgument("unknown operator %v", op)
		}
	}
	return out, nil
}

// Eq reports, per row, whether the two columns hold equal values.
func (t *Table) Eq(a, b Ref) ([]bool, error) { return t.Compare(a, b, OpEq) }

// Gt reports, per row, whether column a is greater than column b.
func (t *Table) Gt(a, b Ref) ([]bool, error) { return t.Compare(a, b, OpGt) }

// Lt reports, per row, whether column a is less than column b.
func (t *Table) Lt(a, b Ref) ([]bool, error) { return t.Compare(a, b, OpLt) }

// Ge reports, per row, whether column a is greater than or equal to column b.
func (t *Table) Ge(a, b Ref) ([]bool, error) { return t.Compare(a, b, OpGe) }

// Le reports, per row, whether column a is less than or equal to column b.
func (t *Table) Le(a, b Ref) ([]bool, error) { return t.Compare(a, b, OpLe) }

// Ne reports, per row, whether the two columns hold different values.
func (t *Table) Ne(a, b Ref) ([]bool, error) { return t.Compare(a, b, OpNe) }
