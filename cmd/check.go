package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ingo-eichhorst/modguard/internal/config"
	"github.com/ingo-eichhorst/modguard/internal/diagnostics"
	"github.com/ingo-eichhorst/modguard/internal/discovery"
	"github.com/ingo-eichhorst/modguard/internal/pipeline"
	"github.com/ingo-eichhorst/modguard/pkg/types"
)

var (
	configPath        string
	jsonOutput        bool
	excludePaths      []string
	disableDeps       bool
	disableInterfaces bool
	disableExternal   bool
)

var checkCmd = &cobra.Command{
	Use:   "check [directory]",
	Short: "Check a Python project's imports against its declared module configuration",
	Args:  cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		projectRoot, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("cannot resolve path: %w", err)
		}

		cfg, err := config.Load(projectRoot, configPath)
		if err != nil {
			return &types.ExitError{Code: 2, Err: err}
		}

		runID := uuid.NewString()
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "check run %s: project root %s\n", runID, projectRoot)
		}

		opts := pipeline.Options{
			EnableDependencies: !disableDeps,
			EnableExternal:     !disableExternal,
			EnableInterfaces:   !disableInterfaces,
			ExtraExcludes:      excludePaths,
			ModuleDistributions: moduleDistributions(cfg),
			ExcludedExternal:    normalizedSet(cfg.External.Exclude),
			RenameExternal:      cfg.External.Rename,
		}

		orch := pipeline.New(projectRoot, cfg, opts)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			orch.Interrupt()
		}()

		result, err := orch.Check(ctx)
		if err != nil {
			return &types.ExitError{Code: 2, Err: err}
		}

		if jsonOutput {
			report := diagnostics.BuildReport(result)
			if err := diagnostics.RenderJSON(cmd.OutOrStdout(), report); err != nil {
				return &types.ExitError{Code: 2, Err: err}
			}
		} else {
			diagnostics.NewTerminal(cmd.OutOrStdout()).Render(result)
		}

		if hasErrors(result) {
			return &types.ExitError{Code: 1, Err: fmt.Errorf("boundary violations found")}
		}
		return nil
	},
}

func hasErrors(result pipeline.Result) bool {
	for _, d := range result.Diagnostics {
		if d.Severity == types.SeverityError {
			return true
		}
	}
	return false
}

// moduleDistributions has no dedicated config key; external-dependency
// checking falls back to each import's top-level module name.
func moduleDistributions(cfg *types.ProjectConfig) map[string][]string {
	return nil
}

// normalizedSet builds a set of distribution names normalized the same
// way as the declared dependencies the external checker compares against.
func normalizedSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[discovery.NormalizeDistName(item)] = true
	}
	return set
}

func init() {
	checkCmd.Flags().StringVar(&configPath, "config", "", "path to a standalone modguard.toml config file")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "output diagnostics as JSON")
	checkCmd.Flags().StringArrayVar(&excludePaths, "exclude", nil, "additional exclude glob, may be repeated")
	checkCmd.Flags().BoolVar(&disableDeps, "no-dependencies", false, "disable internal-dependency checking")
	checkCmd.Flags().BoolVar(&disableInterfaces, "no-interfaces", false, "disable interface checking")
	checkCmd.Flags().BoolVar(&disableExternal, "no-external", false, "disable external-dependency checking")
	rootCmd.AddCommand(checkCmd)
}
