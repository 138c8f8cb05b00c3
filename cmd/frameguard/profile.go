package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wdm0006/frameguard/internal/config"
	"github.com/wdm0006/frameguard/internal/runner"
	"github.com/wdm0006/frameguard/pkg/profile"
)

func newProfileCmd() *cobra.Command {
	var (
		input      string
		inType     string
		topK       int
		asJSON     bool
		viewName   string
		maxAllowed int
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Summarise columns, or draft a view with --view-name.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &config.Config{Input: config.Input{Path: input, Type: inType}}
			f, err := runner.LoadInput(cmd.Context(), c)
			if err != nil {
				return err
			}
			col := profile.NewCollector(f, topK)
			col.Consume(f)

			out := cmd.OutOrStdout()
			switch {
			case viewName != "":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(col.SuggestView(viewName, maxAllowed)); err != nil {
					return err
				}
				return enc.Close()
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(col.Columns())
			}
			_, err = fmt.Fprint(out, col.ReportText())
			return err
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&input, "input", "i", "-", "input file, - for stdin")
	fl.StringVar(&inType, "input-type", "csv", "csv, jsonl or parquet")
	fl.IntVar(&topK, "top", 5, "frequent values to list per text column")
	fl.BoolVar(&asJSON, "json", false, "print the profile as JSON")
	fl.StringVar(&viewName, "view-name", "", "print a view file with this name that the data satisfies")
	fl.IntVar(&maxAllowed, "max-allowed", 10, "largest distinct count turned into allowed_values")
	return cmd
}
