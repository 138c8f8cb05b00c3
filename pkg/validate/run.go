// Package validate checks tabular data against column rules and assembles
// per-rule summaries, per-cell results, a clean row subset and per-row
// error messages.
package validate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// DefaultErrorTolerance is the soft-failure error rate threshold.
const DefaultErrorTolerance = 0.05

// Options configures a validation run.
type Options struct {
	// ErrorTolerance is the error rate at or above which a soft rule fails.
	ErrorTolerance float64
	// Schema, when set, derives rules from a view before Rules run.
	Schema SchemaSource
	// Rules are explicit rules, run after the schema rules.
	Rules RuleSet
	// HashColumns identify rows in the cell table alongside the row number.
	HashColumns []string
	// Disabled kinds are skipped for schema-derived rules.
	Disabled []Kind
	// DisplayName selects display names from the schema source.
	DisplayName bool
	// Now overrides the run clock.
	Now func() time.Time
}

// DefaultOptions returns Options with the default error tolerance.
func DefaultOptions() Options {
	return Options{ErrorTolerance: DefaultErrorTolerance}
}

// RowMessage lists the failing result columns of one row.
type RowMessage struct {
	Row     int
	Key     []any
	Message string
}

// Report is the outcome of Run.
type Report struct {
	RunID     uuid.UUID
	Timestamp time.Time

	// Pass is HardPass && SoftPass: soft failures under the tolerance do
	// not fail the run. Use Flawless for "no rule failed at all".
	Pass bool
	// Flawless is true when no rule failed at all, tolerance ignored.
	Flawless bool
	// Errors holds every failing summary row.
	Errors []SummaryRow

	HardPass   bool
	HardErrors []SummaryRow

	SoftPass bool
	// SoftErrors holds soft failures at or above the tolerance.
	SoftErrors []SummaryRow

	// Summary holds every summary row, passing or not.
	Summary []SummaryRow
	Cells   CellTable
	// Clean holds the rows that passed every applied cell rule.
	Clean *frame.Frame
	// Messages has one entry per row with at least one failing cell.
	Messages []RowMessage
}

// Run validates t: schema-derived rules first, then explicit rules, each in
// registry order.
func Run(t frame.Table, opts Options) (*Report, error) {
	// a tolerance above 1 is allowed and never fails a soft rule
	if opts.ErrorTolerance < 0 || math.IsNaN(opts.ErrorTolerance) {
		return nil, fmt.Errorf("error tolerance %v must be a non-negative number", opts.ErrorTolerance)
	}
	acc, err := NewAccumulator(t, opts.HashColumns)
	if err != nil {
		return nil, err
	}

	if opts.Schema != nil {
		disabled := make(map[Kind]bool, len(opts.Disabled))
		for _, k := range opts.Disabled {
			disabled[k] = true
		}
		for _, e := range registry {
			if e.fromSchema == nil || disabled[e.kind] {
				continue
			}
			if acc, err = e.validate(t, e.fromSchema(opts.Schema, opts.DisplayName), acc); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range registry {
		r, ok := opts.Rules[e.kind]
		if !ok {
			continue
		}
		if r == nil || r.Kind() != e.kind {
			return nil, invalidRule(e.kind, "rule stored under the wrong kind")
		}
		if acc, err = e.validate(t, r, acc); err != nil {
			return nil, err
		}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	rep := &Report{RunID: uuid.New(), Timestamp: now(), Cells: acc.Cells}
	rep.Summary = dedupe(acc.Summary)
	for i := range rep.Summary {
		rep.Summary[i].Timestamp = rep.Timestamp
	}
	for _, row := range rep.Summary {
		if row.Pass {
			continue
		}
		rep.Errors = append(rep.Errors, row)
		switch {
		case row.Severity == SeverityHard:
			rep.HardErrors = append(rep.HardErrors, row)
		case row.ErrorRate >= opts.ErrorTolerance:
			rep.SoftErrors = append(rep.SoftErrors, row)
		}
	}
	rep.Flawless = len(rep.Errors) == 0
	rep.HardPass = len(rep.HardErrors) == 0
	rep.SoftPass = len(rep.SoftErrors) == 0
	rep.Pass = rep.HardPass && rep.SoftPass

	var clean []int
	for i := 0; i < acc.Cells.Rows(); i++ {
		failed := acc.Cells.Failures(i)
		if len(failed) == 0 {
			clean = append(clean, i)
			continue
		}
		rep.Messages = append(rep.Messages, RowMessage{Row: i, Key: acc.Cells.Key(i), Message: strings.Join(failed, ",")})
	}
	if rep.Clean, err = frame.Take(t, clean); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"run_id":      rep.RunID.String(),
		"rows":        t.Rows(),
		"rules":       len(rep.Summary),
		"hard_errors": len(rep.HardErrors),
		"soft_errors": len(rep.SoftErrors),
		"clean_rows":  rep.Clean.Rows(),
	}).Debug("validation run finished")
	return rep, nil
}

// dedupe keeps the first summary row per (column, type, rule).
func dedupe(rows []SummaryRow) []SummaryRow {
	seen := make(map[summaryKey]bool, len(rows))
	out := make([]SummaryRow, 0, len(rows))
	for _, r := range rows {
		if seen[r.key()] {
			continue
		}
		seen[r.key()] = true
		out = append(out, r)
	}
	return out
}
