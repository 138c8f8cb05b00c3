// Package parquetio reads Parquet files into frames and writes tables as
// Parquet.
package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"

	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// leaf maps one flat Parquet column onto a frame column.
type leaf struct {
	name  string
	index int
	kind  frame.Kind
}

// ReadFile loads every row of a flat Parquet file. Nested columns are
// rejected.
func ReadFile(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := parquet.NewReader(f)
	defer func() { _ = r.Close() }()

	leaves, err := leavesOf(r.Schema())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s := frame.Schema{Columns: make([]frame.ColumnSchema, len(leaves))}
	byIndex := make(map[int]leaf, len(leaves))
	for i, l := range leaves {
		s.Columns[i] = frame.ColumnSchema{Name: l.name, Type: l.kind, Nullable: true}
		byIndex[l.index] = l
	}

	out := frame.NewFrame(s)
	buf := make([]parquet.Row, 512)
	for {
		n, err := r.ReadRows(buf)
		for _, row := range buf[:n] {
			out.AppendNullRow()
			if err := setRow(out, out.Rows()-1, row, byIndex); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

func leavesOf(s *parquet.Schema) ([]leaf, error) {
	var out []leaf
	for _, path := range s.Columns() {
		if len(path) != 1 {
			return nil, fmt.Errorf("nested column %v not supported", path)
		}
		lc, ok := s.Lookup(path...)
		if !ok {
			return nil, fmt.Errorf("column %v missing from schema", path)
		}
		out = append(out, leaf{name: path[0], index: lc.ColumnIndex, kind: kindOf(lc.Node.Type().Kind())})
	}
	return out, nil
}

func kindOf(k parquet.Kind) frame.Kind {
	switch k {
	case parquet.Boolean:
		return frame.KindBool
	case parquet.Int32, parquet.Int64:
		return frame.KindInt
	case parquet.Float, parquet.Double:
		return frame.KindFloat
	}
	return frame.KindString
}

func setRow(f *frame.Frame, row int, values parquet.Row, byIndex map[int]leaf) error {
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		l, ok := byIndex[v.Column()]
		if !ok {
			continue
		}
		var cell any
		switch v.Kind() {
		case parquet.Boolean:
			cell = v.Boolean()
		case parquet.Int32:
			cell = int64(v.Int32())
		case parquet.Int64:
			cell = v.Int64()
		case parquet.Float:
			cell = float64(v.Float())
		case parquet.Double:
			cell = v.Double()
		case parquet.ByteArray, parquet.FixedLenByteArray:
			cell = string(v.ByteArray())
		default:
			cell = fmt.Sprint(v)
		}
		if c, ok := frame.Coerce(l.kind, cell); ok {
			if err := f.SetCell(row, l.name, c); err != nil {
				return err
			}
		}
	}
	return nil
}
