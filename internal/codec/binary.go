package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/golang/snappy"
	"github.com/spaolacci/murmur3"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/arkilian/tabular/internal/table"
	"github.com/arkilian/tabular/pkg/types"

	terrors "github.com/arkilian/tabular/internal/errors"
)

// Binary frame layout:
//   - 4 bytes: magic "TBLB"
//   - 1 byte:  format version
//   - 1 byte:  flags (bit 0: payload is snappy-compressed)
//   - 4 bytes: murmur3 checksum of the uncompressed payload (uint32, little-endian)
//   - 4 bytes: stored payload length (uint32, little-endian)
//   - remaining: payload
//
// The payload is protobuf wire data: field 1 holds the column names, field 2
// holds one message per row, and each row holds one cell message per column.
const (
	binaryMagic   = "TBLB"
	binaryVersion = 1
	headerSize    = 14

	flagSnappy = 1 << 0
)

// Payload field numbers.
const (
	fieldColumn protowire.Number = 1
	fieldRow    protowire.Number = 2

	fieldCell protowire.Number = 1

	fieldKind  protowire.Number = 1
	fieldBool  protowire.Number = 2
	fieldInt   protowire.Number = 3
	fieldFloat protowire.Number = 4
	fieldDate  protowire.Number = 5
	fieldText  protowire.Number = 6
)

// EncodeBinary writes t as a single binary frame. Column order, row order and
// every value's kind survive a round trip through DecodeBinary.
func EncodeBinary(w io.Writer, t *table.Table, opts ...Option) error {
	s := buildSettings(opts)

	payload := appendTable(nil, t)
	stored := payload
	var flags byte
	if s.compress {
		stored = snappy.Encode(nil, payload)
		flags |= flagSnappy
	}
	if uint64(len(stored)) > math.MaxUint32 {
		return terrors.NewInvalidArgument("table payload of %d bytes exceeds the binary frame limit", len(stored))
	}

	header := make([]byte, headerSize)
	copy(header[0:4], binaryMagic)
	header[4] = binaryVersion
	header[5] = flags
	binary.LittleEndian.PutUint32(header[6:10], murmur3.Sum32(payload))
	binary.LittleEndian.PutUint32(header[10:14], uint32(len(stored)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("codec: failed to write binary header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("codec: failed to write binary payload: %w", err)
	}
	return nil
}

// DecodeBinary reads one frame written by EncodeBinary.
func DecodeBinary(r io.Reader, opts ...Option) (*table.Table, error) {
	s := buildSettings(opts)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to read binary input: %w", err)
	}
	payload, err := unframe(data)
	if err != nil {
		return nil, err
	}

	columns, rows, err := consumeTable(payload)
	if err != nil {
		return nil, err
	}
	if s.expect != nil && !equalColumns(s.expect, columns) {
		return nil, schemaMismatch(s.expect, columns)
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, terrors.NewSchemaMismatch("row %d has %d cells, frame has %d columns", i, len(row), len(columns)).
				WithDetails(map[string]interface{}{"row": i, "got": len(row), "want": len(columns)})
		}
	}

	t, err := table.New(columns)
	if err != nil {
		return nil, err
	}
	if err := t.AppendRows(rows); err != nil {
		return nil, err
	}
	return t, nil
}

// unframe validates the frame header and returns the uncompressed payload.
func unframe(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, corrupt("frame is %d bytes, shorter than the %d byte header", len(data), headerSize)
	}
	if !bytes.Equal(data[0:4], []byte(binaryMagic)) {
		return nil, corrupt("bad magic %q", data[0:4])
	}
	if data[4] != binaryVersion {
		return nil, corrupt("unsupported version %d", data[4])
	}
	flags := data[5]
	if flags&^byte(flagSnappy) != 0 {
		return nil, corrupt("unknown flags %#x", flags)
	}
	checksum := binary.LittleEndian.Uint32(data[6:10])
	length := binary.LittleEndian.Uint32(data[10:14])

	stored := data[headerSize:]
	if uint64(len(stored)) != uint64(length) {
		return nil, corrupt("payload is %d bytes, header declares %d", len(stored), length)
	}

	payload := stored
	if flags&flagSnappy != 0 {
		var err error
		payload, err = snappy.Decode(nil, stored)
		if err != nil {
			return nil, terrors.Wrap(terrors.ErrCategoryCodec, terrors.CodeUnsupportedFormat, "corrupt binary frame: snappy decode failed", err)
		}
	}
	if got := murmur3.Sum32(payload); got != checksum {
		return nil, corrupt("checksum mismatch: got %08x, want %08x", got, checksum)
	}
	return payload, nil
}

func appendTable(b []byte, t *table.Table) []byte {
	for _, name := range t.Columns() {
		b = protowire.AppendTag(b, fieldColumn, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	var row []byte
	for _, r := range t.Rows() {
		row = row[:0]
		for _, v := range r {
			row = protowire.AppendTag(row, fieldCell, protowire.BytesType)
			row = protowire.AppendBytes(row, appendCell(nil, v))
		}
		b = protowire.AppendTag(b, fieldRow, protowire.BytesType)
		b = protowire.AppendBytes(b, row)
	}
	return b
}

func appendCell(b []byte, v types.Value) []byte {
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(v.Kind()))
	switch v.Kind() {
	case types.KindBool:
		x, _ := v.AsBool()
		b = protowire.AppendTag(b, fieldBool, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(x))
	case types.KindInt:
		x, _ := v.AsInt()
		b = protowire.AppendTag(b, fieldInt, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(x))
	case types.KindFloat:
		x, _ := v.AsFloat()
		b = protowire.AppendTag(b, fieldFloat, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(x))
	case types.KindDate:
		x, _ := v.AsDate()
		b = protowire.AppendTag(b, fieldDate, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(x.DaysSinceEpoch()))
	case types.KindText:
		x, _ := v.AsText()
		b = protowire.AppendTag(b, fieldText, protowire.BytesType)
		b = protowire.AppendString(b, x)
	}
	return b
}

func consumeTable(b []byte) ([]string, []types.Row, error) {
	var (
		columns []string
		rows    []types.Row
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, nil, wireError(n)
		}
		b = b[n:]

		switch {
		case num == fieldColumn && typ == protowire.BytesType:
			name, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, nil, wireError(n)
			}
			columns = append(columns, name)
			b = b[n:]
		case num == fieldRow && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, nil, wireError(n)
			}
			row, err := consumeRow(raw)
			if err != nil {
				return nil, nil, err
			}
			rows = append(rows, row)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, nil, wireError(n)
			}
			b = b[n:]
		}
	}
	return columns, rows, nil
}

func consumeRow(b []byte) (types.Row, error) {
	var row types.Row
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, wireError(n)
		}
		b = b[n:]

		if num == fieldCell && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, wireError(n)
			}
			v, err := consumeCell(raw)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, wireError(n)
		}
		b = b[n:]
	}
	if row == nil {
		row = types.Row{}
	}
	return row, nil
}

func consumeCell(b []byte) (types.Value, error) {
	var (
		kind  types.Kind
		bv    bool
		iv    int64
		fv    float64
		dv    int64
		sv    string
		wrong protowire.Number
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return types.Value{}, wireError(n)
		}
		b = b[n:]

		switch num {
		case fieldKind, fieldBool, fieldInt, fieldDate:
			if typ != protowire.VarintType {
				wrong = num
				break
			}
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return types.Value{}, wireError(n)
			}
			b = b[n:]
			switch num {
			case fieldKind:
				if x > math.MaxUint8 {
					return types.Value{}, corrupt("cell kind %d out of range", x)
				}
				kind = types.Kind(x)
			case fieldBool:
				bv = protowire.DecodeBool(x)
			case fieldInt:
				iv = protowire.DecodeZigZag(x)
			case fieldDate:
				dv = protowire.DecodeZigZag(x)
			}
			continue
		case fieldFloat:
			if typ != protowire.Fixed64Type {
				wrong = num
				break
			}
			x, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return types.Value{}, wireError(n)
			}
			fv = math.Float64frombits(x)
			b = b[n:]
			continue
		case fieldText:
			if typ != protowire.BytesType {
				wrong = num
				break
			}
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return types.Value{}, wireError(n)
			}
			sv = x
			b = b[n:]
			continue
		}
		if wrong != 0 {
			return types.Value{}, corrupt("cell field %d has wire type %d", wrong, typ)
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return types.Value{}, wireError(n)
		}
		b = b[n:]
	}

	switch kind {
	case types.KindNull:
		return types.Null(), nil
	case types.KindBool:
		return types.Bool(bv), nil
	case types.KindInt:
		return types.Int(iv), nil
	case types.KindFloat:
		return types.Float(fv), nil
	case types.KindDate:
		return types.DateOf(types.DateFromDays(dv)), nil
	case types.KindText:
		return types.Text(sv), nil
	default:
		return types.Value{}, corrupt("unknown cell kind %d", kind)
	}
}

func corrupt(format string, args ...interface{}) error {
	return terrors.NewUnsupportedFormat("corrupt binary frame: "+format, args...)
}

func wireError(n int) error {
	return terrors.Wrap(terrors.ErrCategoryCodec, terrors.CodeUnsupportedFormat, "corrupt binary frame", protowire.ParseError(n))
}
