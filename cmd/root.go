package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ingo-eichhorst/modguard/pkg/types"
	"github.com/ingo-eichhorst/modguard/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "modguard",
	Short:   "Enforce module boundaries in Python projects",
	Long:    "modguard parses a Python project's imports and checks them against a\ndeclared module and layer configuration, reporting dependency, layer,\nand interface violations.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *types.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
