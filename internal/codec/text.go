package codec

import (
	"io"

	"github.com/arkilian/tabular/internal/table"
)

// EncodeText writes the tab-separated display dump of t. The output is meant
// for people; there is no matching decoder.
func EncodeText(w io.Writer, t *table.Table) error {
	return t.Print(w)
}
