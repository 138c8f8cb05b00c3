package main

import (
	"github.com/spf13/cobra"

	"github.com/wdm0006/frameguard/internal/config"
	"github.com/wdm0006/frameguard/internal/runner"
	"github.com/wdm0006/frameguard/pkg/io/ioutils"
	"github.com/wdm0006/frameguard/pkg/transform/binning"
)

func newBinCmd() *cobra.Command {
	var (
		b       binning.ColumnBinner
		input   string
		inType  string
		output  string
		outType string
	)
	cmd := &cobra.Command{
		Use:   "bin",
		Short: "Bucket a numeric column into labeled bins.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := b.Check(); err != nil {
				return usageErr("%v", err)
			}
			c := &config.Config{Input: config.Input{Path: input, Type: inType}}
			f, err := runner.LoadInput(cmd.Context(), c)
			if err != nil {
				return err
			}
			out, err := b.Apply(cmd.Context(), f)
			if err != nil {
				return err
			}
			if output == ioutils.Stdio && outType == "parquet" {
				return usageErr("parquet output needs a file path")
			}
			return runner.WriteTable(output, outType, out)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&input, "input", "i", "-", "input file, - for stdin")
	fl.StringVar(&inType, "input-type", "csv", "csv, jsonl or parquet")
	fl.StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	fl.StringVar(&outType, "output-type", "csv", "csv, jsonl or parquet")
	fl.StringVar(&b.From, "from", "", "numeric source column")
	fl.StringVar(&b.To, "to", "", "label column to add")
	fl.Float64SliceVar(&b.Bins, "bins", nil, "ascending split points")
	fl.StringSliceVar(&b.Labels, "labels", nil, "one label per bin")
	return cmd
}
