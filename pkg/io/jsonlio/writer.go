package jsonlio

import (
	"encoding/json"
	"io"

	"github.com/wdm0006/frameguard/pkg/frame"
	iox "github.com/wdm0006/frameguard/pkg/io/ioutils"
)

// Write encodes one object per row. Null cells are written as JSON null
// so that every line carries every column.
func Write(w io.Writer, t frame.Table) error {
	enc := json.NewEncoder(w)
	names := t.ColumnNames()
	for r := 0; r < t.Rows(); r++ {
		row := make(orderedRow, len(names))
		for c, name := range names {
			row[c].key = name
			if v, ok := t.Cell(r, name); ok {
				row[c].value = v
			}
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes t to path; a .gz path is compressed.
func WriteFile(path string, t frame.Table) error {
	out, err := iox.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, t); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// orderedRow marshals as an object keeping column order.
type orderedRow []struct {
	key   string
	value any
}

func (o orderedRow) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, kv := range o {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(kv.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.value)
		if err != nil {
			return nil, err
		}
		buf = append(append(append(buf, k...), ':'), v...)
	}
	return append(buf, '}'), nil
}
