// Package jsonlio reads and writes newline-delimited JSON objects.
package jsonlio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wdm0006/frameguard/pkg/frame"
	iox "github.com/wdm0006/frameguard/pkg/io/ioutils"
)

type ReaderOptions struct {
	SampleRows int // for inference; default 100
}

// Reader decodes one object per line. Column order follows first
// appearance of each key.
type Reader struct {
	dec  *json.Decoder
	opt  ReaderOptions
	buf  []map[string]any
	keys []string
}

func NewReader(r io.Reader, opt ReaderOptions) *Reader {
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()
	return &Reader{dec: dec, opt: opt}
}

// ReadFile loads a whole JSONL file (optionally gzip compressed).
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
	return f, nil
}

// next decodes one object, recording keys not seen before.
func (r *Reader) next(seen map[string]bool) (map[string]any, error) {
	var raw json.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		return nil, err
	}
	keys, err := objectKeys(raw)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if seen != nil {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				r.keys = append(r.keys, k)
			}
		}
	}
	return m, nil
}

// objectKeys lists the top-level keys of a JSON object in document order.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("jsonl: want an object per line, got %s", strings.TrimSpace(string(raw)))
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// InferSchema samples objects to determine the columns and their kinds.
func (r *Reader) InferSchema() (frame.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	seen := map[string]bool{}
	for len(r.buf) < max {
		m, err := r.next(seen)
		if err == io.EOF {
			break
		}
		if err != nil {
			return frame.Schema{}, err
		}
		r.buf = append(r.buf, m)
	}
	if len(r.keys) == 0 {
		return frame.Schema{}, fmt.Errorf("jsonl: no columns found")
	}
	kinds := inferKinds(r.buf, r.keys)
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(r.keys))}
	for i, k := range r.keys {
		schema.Columns[i] = frame.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// ReadAll loads the buffered sample and the remaining objects. Keys
// outside schema are ignored.
func (r *Reader) ReadAll(schema frame.Schema) (*frame.Frame, error) {
	f := frame.NewFrame(schema)
	for _, m := range r.buf {
		if err := setRow(f, m); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		m, err := r.next(nil)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := setRow(f, m); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *frame.Frame, m map[string]any) error {
	f.AppendNullRow()
	row := f.Rows() - 1
	for _, cs := range f.Schema().Columns {
		if v, ok := frame.Coerce(cs.Type, m[cs.Name]); ok {
			if err := f.SetCell(row, cs.Name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// inferKinds picks the narrowest kind fitting every non-null sample value.
// Strings are not reinterpreted: "1" stays a string.
func inferKinds(sample []map[string]any, keys []string) []frame.Kind {
	kinds := make([]frame.Kind, len(keys))
	for i, k := range keys {
		seen, num, integer, boolean, times := 0, 0, 0, 0, 0
		for _, m := range sample {
			v, ok := m[k]
			if !ok || v == nil {
				continue
			}
			seen++
			switch t := v.(type) {
			case json.Number:
				num++
				if _, err := t.Int64(); err == nil {
					integer++
				}
			case bool:
				boolean++
			case string:
				if _, ok := frame.ParseTime(t); ok {
					times++
				}
			}
		}
		switch {
		case seen == 0:
			kinds[i] = frame.KindString
		case integer == seen:
			kinds[i] = frame.KindInt
		case num == seen:
			kinds[i] = frame.KindFloat
		case boolean == seen:
			kinds[i] = frame.KindBool
		case times == seen:
			kinds[i] = frame.KindTime
		default:
			kinds[i] = frame.KindString
		}
	}
	return kinds
}
