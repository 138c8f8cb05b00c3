package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdm0006/frameguard/internal/config"
	"github.com/wdm0006/frameguard/internal/runner"
)

func newValidateCmd() *cobra.Command {
	var (
		cfgPath   string
		outputDir string
		histPath  string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the validation described by a config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath == "" {
				return usageErr("--config is required")
			}
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if outputDir != "" {
				c.Output.Dir = outputDir
			}
			if histPath != "" {
				c.History.Path = histPath
			}
			res, err := runner.Run(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Report.String())
			if !res.Report.Pass {
				return fmt.Errorf("%w: run %s", errValidationFailed, res.Report.RunID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "run config (yaml, toml or json)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "write result tables here")
	cmd.Flags().StringVar(&histPath, "history", "", "record the run in this history database")
	return cmd
}
