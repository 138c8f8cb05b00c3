package csvio

import (
	"encoding/csv"
	"io"

	"github.com/wdm0006/frameguard/pkg/frame"
	iox "github.com/wdm0006/frameguard/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// Write writes t with a header row. Null cells are written empty.
func Write(w io.Writer, t frame.Table, opt WriterOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	names := t.ColumnNames()
	if err := cw.Write(names); err != nil {
		return err
	}
	row := make([]string, len(names))
	for r := 0; r < t.Rows(); r++ {
		for c, name := range names {
			row[c] = ""
			if v, ok := t.Cell(r, name); ok {
				row[c] = frame.FormatCell(v)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes t to path; a .gz path is compressed.
func WriteFile(path string, t frame.Table, opt WriterOptions) error {
	out, err := iox.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, t, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
