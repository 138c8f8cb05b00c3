package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wdm0006/frameguard/pkg/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
		runID  string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded validation runs, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return usageErr("--db is required")
			}
			s, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if runID != "" {
				id, err := uuid.Parse(runID)
				if err != nil {
					return usageErr("--run: %v", err)
				}
				rec, err := s.Get(id)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}

			recs, err := s.List(limit)
			if err != nil {
				return err
			}
			t := tablewriter.NewWriter(cmd.OutOrStdout())
			t.SetHeader([]string{"run", "time", "source", "rows", "clean", "pass", "hard", "soft", "failures"})
			for _, r := range recs {
				t.Append([]string{
					r.RunID.String(),
					r.Timestamp.Format(time.RFC3339),
					r.Source,
					strconv.Itoa(r.Rows),
					strconv.Itoa(r.CleanRows),
					passWord(r.Pass),
					passWord(r.HardPass),
					passWord(r.SoftPass),
					strconv.Itoa(len(r.Failures)),
				})
			}
			t.Render()
			if len(recs) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no runs recorded")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "history database")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "runs to list, 0 for all")
	cmd.Flags().StringVar(&runID, "run", "", "print one run as JSON")
	return cmd
}

func passWord(ok bool) string {
	if ok {
		return "pass"
	}
	return "FAIL"
}
