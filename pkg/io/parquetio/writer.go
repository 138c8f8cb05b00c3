package parquetio

import (
	"encoding/json"
	"fmt"
	"time"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// schemaJSON builds the JSON schema the xitongsys JSONWriter expects. Every
// column is optional; time columns are stored as RFC 3339 text.
func schemaJSON(t frame.Table) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	sc := struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, name := range t.ColumnNames() {
		k, _ := t.ColumnKind(name)
		tag := "name=" + name + ", repetitiontype=OPTIONAL, type="
		switch k {
		case frame.KindFloat:
			tag += "DOUBLE"
		case frame.KindInt:
			tag += "INT64"
		case frame.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteFile writes t to a Parquet file at path.
func WriteFile(path string, t frame.Table) (err error) {
	schema, err := schemaJSON(t)
	if err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	w, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	defer func() {
		if serr := w.WriteStop(); err == nil && serr != nil {
			err = fmt.Errorf("parquet flush: %w", serr)
		}
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()

	names := t.ColumnNames()
	for r := 0; r < t.Rows(); r++ {
		rec := make(map[string]any, len(names))
		for _, name := range names {
			v, ok := t.Cell(r, name)
			if !ok {
				continue
			}
			if tm, isTime := v.(time.Time); isTime {
				v = tm.Format(time.RFC3339Nano)
			}
			rec[name] = v
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := w.Write(string(b)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	return nil
}
