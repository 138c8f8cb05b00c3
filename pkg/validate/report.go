package validate

import (
	"fmt"
	"strings"

	"github.com/wdm0006/frameguard/pkg/frame"
)

var summarySchema = frame.Schema{Columns: []frame.ColumnSchema{
	{Name: "column_name", Type: frame.KindString},
	{Name: "validation_type", Type: frame.KindString},
	{Name: "validation_rule", Type: frame.KindString},
	{Name: "pass", Type: frame.KindBool},
	{Name: "count", Type: frame.KindInt},
	{Name: "error_rate", Type: frame.KindFloat},
	{Name: "distinct_values", Type: frame.KindString, Nullable: true},
	{Name: "hard_soft_validation", Type: frame.KindString},
	{Name: "time_stamp", Type: frame.KindTime},
}}

// SummaryFrame renders summary rows as a frame for the writers.
func SummaryFrame(rows []SummaryRow) (*frame.Frame, error) {
	data := make([][]any, len(rows))
	for i, r := range rows {
		var distinct any
		if len(r.DistinctValues) > 0 {
			distinct = formatValues(r.DistinctValues)
		}
		data[i] = []any{r.Column, r.Type.String(), r.Rule, r.Pass, r.Count, r.ErrorRate,
			distinct, string(r.Severity), r.Timestamp}
	}
	f, err := frame.FromRows(summarySchema, data)
	if err != nil {
		return nil, fmt.Errorf("summary frame: %w", err)
	}
	return f, nil
}

// identitySchema is row_number followed by the hash columns.
func (c CellTable) identitySchema() frame.Schema {
	s := frame.Schema{Columns: []frame.ColumnSchema{{Name: "row_number", Type: frame.KindInt}}}
	for _, h := range c.hash {
		s.Columns = append(s.Columns, frame.ColumnSchema{Name: h, Type: c.kinds[h], Nullable: true})
	}
	return s
}

// Frame renders the cell table: row_number, the hash columns, then one bool
// column per result. A hash value that does not fit its column kind is an
// error.
func (c CellTable) Frame() (*frame.Frame, error) {
	s := c.identitySchema()
	for _, n := range c.names {
		s.Columns = append(s.Columns, frame.ColumnSchema{Name: n, Type: frame.KindBool})
	}
	data := make([][]any, c.rows)
	for i := range data {
		row := append(make([]any, 0, len(s.Columns)), i)
		row = append(row, c.Key(i)...)
		for _, n := range c.names {
			row = append(row, c.masks[n][i])
		}
		data[i] = row
	}
	f, err := frame.FromRows(s, data)
	if err != nil {
		return nil, fmt.Errorf("cell frame: %w", err)
	}
	return f, nil
}

// MessagesFrame renders the per-row messages with the row identity.
func (r *Report) MessagesFrame() (*frame.Frame, error) {
	s := r.Cells.identitySchema()
	s.Columns = append(s.Columns, frame.ColumnSchema{Name: "validation_error", Type: frame.KindString})
	data := make([][]any, len(r.Messages))
	for i, m := range r.Messages {
		row := append(make([]any, 0, len(s.Columns)), m.Row)
		row = append(row, m.Key...)
		data[i] = append(row, m.Message)
	}
	f, err := frame.FromRows(s, data)
	if err != nil {
		return nil, fmt.Errorf("messages frame: %w", err)
	}
	return f, nil
}

// String renders a short human readable verdict.
func (r *Report) String() string {
	var b strings.Builder
	verdict := "PASS"
	if !r.Pass {
		verdict = "FAIL"
	}
	fmt.Fprintf(&b, "%s hard=%s soft=%s clean_rows=%d failing_rows=%d",
		verdict, passWord(r.HardPass), passWord(r.SoftPass), r.Clean.Rows(), len(r.Messages))
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "\n  %s %s %s %s count=%d rate=%.4g", e.Severity, e.Column, e.Type, e.Rule, e.Count, e.ErrorRate)
	}
	return b.String()
}

func passWord(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}
