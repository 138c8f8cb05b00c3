// Package runner executes one configured validation run: load the input,
// apply the normalize and bin steps, validate against the view and explicit
// rules, write the result tables and record the run.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/wdm0006/frameguard/internal/config"
	"github.com/wdm0006/frameguard/pkg/frame"
	"github.com/wdm0006/frameguard/pkg/history"
	"github.com/wdm0006/frameguard/pkg/io/csvio"
	"github.com/wdm0006/frameguard/pkg/io/jsonlio"
	"github.com/wdm0006/frameguard/pkg/io/parquetio"
	"github.com/wdm0006/frameguard/pkg/io/sqlio"
	"github.com/wdm0006/frameguard/pkg/ontology"
	"github.com/wdm0006/frameguard/pkg/validate"
)

// Result is what a run produced.
type Result struct {
	Report  *validate.Report
	Record  history.Record
	Outputs []string
}

// Source names the input for logs and the run history.
func Source(c *config.Config) string {
	if c.InputType() == "postgres" {
		return "postgres: " + c.Input.Query
	}
	return c.Input.Path
}

// LoadInput reads the configured input into a frame.
func LoadInput(ctx context.Context, c *config.Config) (*frame.Frame, error) {
	switch c.InputType() {
	case "csv":
		return csvio.ReadFile(c.Input.Path, csvio.ReaderOptions{
			HasHeader:  c.HasHeader(),
			Delimiter:  c.Delimiter(),
			SampleRows: 100,
		})
	case "jsonl":
		return jsonlio.ReadFile(c.Input.Path, jsonlio.ReaderOptions{SampleRows: 100})
	case "parquet":
		return parquetio.ReadFile(c.Input.Path)
	case "postgres":
		db, err := sqlio.Open(ctx, c.Input.DSN, sqlio.Options{})
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()
		return sqlio.ReadQuery(ctx, db, c.Input.Query)
	}
	return nil, fmt.Errorf("%w: unsupported input type %q", config.ErrInvalidConfig, c.Input.Type)
}

// Schema loads the configured view, or returns nil when none is set.
func Schema(c *config.Config) (validate.SchemaSource, error) {
	if c.Validation.View == "" {
		return nil, nil
	}
	v, err := ontology.Load(c.Validation.BasePath, c.Validation.View)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Run executes c end to end. A failing report is not an error; callers
// inspect Result.Report.Pass.
func Run(ctx context.Context, c *config.Config) (*Result, error) {
	logger := log.WithField("source", Source(c))

	f, err := LoadInput(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	logger.WithFields(log.Fields{"rows": f.Rows(), "cols": f.Cols()}).Info("input loaded")

	if p := c.Pipeline(); p.Len() > 0 {
		if f, err = p.Run(ctx, f); err != nil {
			return nil, fmt.Errorf("bin: %w", err)
		}
	}

	schema, err := Schema(c)
	if err != nil {
		return nil, err
	}
	opts, err := c.Options(schema)
	if err != nil {
		return nil, err
	}
	rep, err := validate.Run(f, opts)
	if err != nil {
		return nil, err
	}
	logger.WithFields(log.Fields{
		"run_id":    rep.RunID,
		"pass":      rep.Pass,
		"hard_pass": rep.HardPass,
		"soft_pass": rep.SoftPass,
		"errors":    len(rep.Errors),
	}).Info("validation finished")

	res := &Result{Report: rep, Record: history.FromReport(rep, Source(c))}
	if c.Output.Dir != "" {
		if res.Outputs, err = WriteReport(c.Output.Dir, c.OutputType(), rep); err != nil {
			return nil, err
		}
	}
	if c.History.Path != "" {
		if err := record(c.History.Path, res.Record); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func record(path string, rec history.Record) error {
	s, err := history.Open(path)
	if err != nil {
		return err
	}
	if err := s.Put(rec); err != nil {
		_ = s.Close()
		return err
	}
	return s.Close()
}

// WriteReport writes the summary, cell, message and clean tables to dir
// in the given format and returns the paths written.
func WriteReport(dir, typ string, rep *validate.Report) ([]string, error) {
	summary, err := validate.SummaryFrame(rep.Summary)
	if err != nil {
		return nil, err
	}
	cells, err := rep.Cells.Frame()
	if err != nil {
		return nil, err
	}
	messages, err := rep.MessagesFrame()
	if err != nil {
		return nil, err
	}
	tables := []struct {
		name string
		t    frame.Table
	}{
		{"summary", summary},
		{"cells", cells},
		{"messages", messages},
		{"clean", rep.Clean},
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var out []string
	for _, tb := range tables {
		path := filepath.Join(dir, tb.name+"."+typ)
		if err := WriteTable(path, typ, tb.t); err != nil {
			return out, fmt.Errorf("write %s: %w", tb.name, err)
		}
		log.WithField("path", path).Debug("wrote table")
		out = append(out, path)
	}
	return out, nil
}

// WriteTable writes t to path as csv, jsonl or parquet.
func WriteTable(path, typ string, t frame.Table) error {
	switch typ {
	case "csv":
		return csvio.WriteFile(path, t, csvio.WriterOptions{})
	case "jsonl":
		return jsonlio.WriteFile(path, t)
	case "parquet":
		return parquetio.WriteFile(path, t)
	}
	return fmt.Errorf("%w: unsupported output type %q", config.ErrInvalidConfig, typ)
}
