package table

import (
	"strconv"

	terrors "github.com/arkilian/tabular/internal/errors"
)

type options struct {
	view bool
}

// Option configures how a derived table relates to its source.
type Option func(*options)

// AsView makes the derived table share row storage with its source. Writes to
// cells through either table are visible through both. Use it only when the
// copy is a measurable cost and the caller owns both tables.
func AsView() Option {
	return func(o *options) { o.view = true }
}

// AsCopy requests an independent copy of the rows. This is the default.
func AsCopy() Option {
	return func(o *options) { o.view = false }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Ref identifies a column by position or by name.
type Ref struct {
	name   string
	pos    int
	byName bool
}

// At refers to the column at position i.
func At(i int) Ref { return Ref{pos: i} }

// Named refers to the first column called name.
func Named(name string) Ref { return Ref{name: name, byName: true} }

// String returns the name or position of the reference.
func (r Ref) String() string {
	if r.byName {
		return r.name
	}
	return strconv.Itoa(r.pos)
}

// resolve returns the column index the reference points at.
func (t *Table) resolve(r Ref) (int, error) {
	if r.byName {
		for i, c := range t.columns {
			if c == r.name {
				return i, nil
			}
		}
		return 0, terrors.NewColumnNotFound(r.name)
	}
	if r.pos < 0 || r.pos >= len(t.columns) {
		return 0, terrors.NewColumnNotFound(r.pos)
	}
	return r.pos, nil
}

// ColumnIndex returns the position of the first column called name.
func (t *Table) ColumnIndex(name string) (int, error) {
	return t.resolve(Named(name))
}
