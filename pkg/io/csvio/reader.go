// Package csvio reads delimited text into frames and writes tables back out.
package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/wdm0006/frameguard/pkg/frame"
	iox "github.com/wdm0006/frameguard/pkg/io/ioutils"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
}

// Reader decodes CSV records. Records read during inference are buffered
// and replayed by ReadAll.
type Reader struct {
	r   *csv.Reader
	opt ReaderOptions
	buf [][]string

	shortRecords int
	longRecords  int
}

// NewReader wraps r, sniffing the delimiter from its first 4 KiB when
// opt.Delimiter is zero.
func NewReader(r io.Reader, opt ReaderOptions) *Reader {
	br := bufio.NewReaderSize(r, 4096)
	rr := csv.NewReader(br)
	if opt.Delimiter == 0 {
		sample, _ := br.Peek(4096)
		rr.Comma, rr.LazyQuotes = sniff(sample)
	} else {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt}
}

// ReadFile loads a whole CSV file (optionally gzip compressed) with an
// inferred schema.
func ReadFile(path string, opt ReaderOptions) (*frame.Frame, error) {
	rc, err := iox.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	r := NewReader(rc, opt)
	schema, err := r.InferSchema()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if w := r.Warnings(); w != "" {
		log.WithField("path", path).Warnf("csv repairs: %s", w)
	}
	return f, nil
}

// InferSchema reads the header (if present) and samples rows to determine
// column kinds.
func (r *Reader) InferSchema() (frame.Schema, error) {
	rec, err := r.r.Read()
	if err == io.EOF {
		return frame.Schema{}, fmt.Errorf("csv: empty input")
	}
	if err != nil {
		return frame.Schema{}, err
	}
	names := make([]string, len(rec))
	if r.opt.HasHeader {
		for i := range rec {
			names[i] = strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		}
		names[0] = strings.TrimPrefix(names[0], "\ufeff")
	} else {
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
		r.buf = append(r.buf, rec)
	}

	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(r.buf) < max {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frame.Schema{}, err
		}
		r.buf = append(r.buf, rec)
	}

	kinds := inferKinds(r.buf, len(names))
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = frame.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// ReadAll loads the buffered sample and the rest of the input into a Frame.
func (r *Reader) ReadAll(schema frame.Schema) (*frame.Frame, error) {
	f := frame.NewFrame(schema)
	for _, rec := range r.buf {
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *Reader) appendRecord(f *frame.Frame, rec []string) error {
	cols := f.Schema().Columns
	switch {
	case len(rec) < len(cols):
		r.shortRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv short record at row %d: need %d fields, got %d", f.Rows(), len(cols), len(rec))
		}
	case len(rec) > len(cols):
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows(), len(cols), len(rec))
		}
	}
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range cols {
		if i >= len(rec) {
			break
		}
		if v, ok := frame.ParseCell(cs.Type, strings.ToValidUTF8(rec[i], "?")); ok {
			if err := f.SetCell(row, cs.Name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

var numRe = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// inferKinds picks, per column, the narrowest kind every non-blank sample
// value satisfies: int, float, bool, time, then string.
func inferKinds(rows [][]string, ncol int) []frame.Kind {
	kinds := make([]frame.Kind, ncol)
	for c := 0; c < ncol; c++ {
		seen, num, integer, boolean, times := 0, 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			seen++
			switch lv := strings.ToLower(v); {
			case numRe.MatchString(v):
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			case lv == "true" || lv == "false":
				boolean++
			default:
				if _, ok := frame.ParseTime(v); ok {
					times++
				}
			}
		}
		switch {
		case seen == 0:
			kinds[c] = frame.KindString
		case integer == seen:
			kinds[c] = frame.KindInt
		case num == seen:
			kinds[c] = frame.KindFloat
		case boolean == seen:
			kinds[c] = frame.KindBool
		case times == seen:
			kinds[c] = frame.KindTime
		default:
			kinds[c] = frame.KindString
		}
	}
	return kinds
}

// sniff picks the most frequent candidate delimiter in the first line and
// enables lazy quotes when the sample has unbalanced quotes.
func sniff(sample []byte) (rune, bool) {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	best, bestCount := ',', 0
	for _, c := range []rune{',', '\t', ';', '|'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best, bytes.Count(sample, []byte{'"'})%2 != 0
}

// Warnings summarises the records repaired while reading.
func (r *Reader) Warnings() string {
	var parts []string
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
