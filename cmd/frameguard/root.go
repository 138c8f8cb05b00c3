package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set with -ldflags at release time.
var Version string

// Exit codes.
const (
	exitOK = iota
	exitError
	exitUsage
	exitFailed
)

// errValidationFailed marks a run that completed but did not pass.
var errValidationFailed = errors.New("validation failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "frameguard",
		Short:         "Validate tabular data against a view and a rule set.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintln(cmd.OutOrStdout(), "frameguard", version())
				return nil
			}
			return cmd.Help()
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			if v, _ := cmd.Flags().GetBool("verbose"); v {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.Flags().Bool("version", false, "print version and exit")
	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	root.AddCommand(newValidateCmd(), newBinCmd(), newProfileCmd(), newHistoryCmd())
	return root
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

func execute(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errValidationFailed):
		log.Warn(err)
		return exitFailed
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	default:
		log.Error(err)
		return exitError
	}
}

var errUsage = errors.New("usage")

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
