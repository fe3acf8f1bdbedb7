package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conwaymd/conwaymd/internal/configloader"
	"github.com/conwaymd/conwaymd/internal/logging"
	"github.com/conwaymd/conwaymd/internal/ui/pretty"
	"github.com/conwaymd/conwaymd/pkg/config"
	"github.com/conwaymd/conwaymd/pkg/runner"
)

// ErrConversionFailed is returned when one or more files failed to convert.
var ErrConversionFailed = errors.New("conversion failed")

// ErrIssuesFound is returned in strict mode when conversion succeeded but
// recorded diagnostics.
var ErrIssuesFound = errors.New("conversion issues found")

type convertFlags struct {
	format     string
	ignore     []string
	properties map[string]string
	strict     bool
}

func newConvertCommand() *cobra.Command {
	var cfg config.Config
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert CMD files to HTML",
		Long:  convertLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, &cfg, flags)
		},
	}

	addConvertFlags(cmd, &cfg, flags)

	return cmd
}

const convertLongDescription = `Convert CMD (Conway-Markdown) files to HTML.

By default, converts all .cmd files in the current directory and
subdirectories, writing each file's HTML next to its source. Specify
paths to convert specific files or directories.

Examples:
  conwaymd convert                       # Convert current directory
  conwaymd convert docs/                 # Convert docs directory
  conwaymd convert index.cmd             # Convert single file
  conwaymd convert --dry-run             # Convert without writing output
  conwaymd convert --property title=Home # Override a boilerplate property
  conwaymd convert --format json         # Output results as JSON for CI
  conwaymd convert --strict              # Treat diagnostics as failures`

func runConvert(cmd *cobra.Command, args []string, cfg *config.Config, flags *convertFlags) error {
	logger := logging.Default()

	// Map string flags to typed config values.
	cfg.Format = config.OutputFormat(flags.format)
	cfg.Ignore = flags.ignore
	for name, value := range flags.properties {
		cfg.SetProperty(name, value)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadOpts := configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cfg,
	}

	loadResult, err := configloader.Load(ctx, loadOpts)
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}

	finalCfg := loadResult.Config

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	logger.Debug("configuration loaded",
		logging.FieldVerbose, finalCfg.Verbose,
		"dry_run", finalCfg.DryRun,
		logging.FieldJobs, finalCfg.Jobs,
	)

	convertRunner := runner.New(logger)

	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		Extensions:   runner.DefaultExtensions(),
		ExcludeGlobs: finalCfg.Ignore,
		Jobs:         finalCfg.Jobs,
		Config:       finalCfg,
	}

	logger.Debug("starting conversion run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := convertRunner.Run(logging.WithLogger(ctx, logger), runOpts)
	if err != nil {
		return errors.Join(errors.New("conversion run failed"), err)
	}

	if finalCfg.Format == config.FormatJSON {
		if err := outputResultJSON(cmd, result); err != nil {
			return err
		}
	} else {
		colorMode, err := cmd.Flags().GetString("color")
		if err != nil {
			colorMode = "auto"
		}
		styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, cmd.OutOrStdout()))
		styles.MaxWidth = pretty.TerminalWidth(cmd.OutOrStdout(), 0)
		for _, outcome := range result.Files {
			if text := styles.FormatOutcome(outcome, finalCfg.Verbose); text != "" {
				fmt.Fprint(cmd.OutOrStdout(), text)
			}
		}
		if finalCfg.Verbose {
			fmt.Fprint(cmd.OutOrStdout(), styles.FormatSummary(result.Stats))
		} else {
			fmt.Fprint(cmd.OutOrStdout(), styles.FormatSummaryOneLine(result.Stats))
		}
	}

	switch ExitCodeFromResult(result, flags.strict) {
	case ExitConversionErrors:
		return ErrConversionFailed
	case ExitConversionIssues:
		return ErrIssuesFound
	}

	return nil
}

// jsonDiagnostic is a diagnostic in JSON output.
type jsonDiagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	EndLine int    `json:"end_line,omitempty"`
	Message string `json:"message"`
}

// jsonOutcome is a file outcome in JSON output.
type jsonOutcome struct {
	Path        string           `json:"path"`
	OutputPath  string           `json:"output_path,omitempty"`
	Written     bool             `json:"written"`
	Skipped     bool             `json:"skipped,omitempty"`
	SkipReason  string           `json:"skip_reason,omitempty"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

// jsonResult is the whole run result in JSON output.
type jsonResult struct {
	Files []jsonOutcome `json:"files"`
	Stats runner.Stats  `json:"stats"`
}

// outputResultJSON writes the run result as indented JSON.
func outputResultJSON(cmd *cobra.Command, result *runner.Result) error {
	out := jsonResult{Files: make([]jsonOutcome, 0, len(result.Files)), Stats: result.Stats}
	for _, outcome := range result.Files {
		entry := jsonOutcome{
			Path:       outcome.Path,
			OutputPath: outcome.OutputPath,
			Written:    outcome.Written,
			Skipped:    outcome.Skipped,
			SkipReason: outcome.SkipReason,
		}
		if outcome.Error != nil {
			entry.Error = outcome.Error.Error()
		}
		for _, diag := range outcome.Diagnostics {
			entry.Diagnostics = append(entry.Diagnostics, jsonDiagnostic{
				File:    diag.File,
				Line:    diag.Line,
				EndLine: diag.EndLine,
				Message: diag.Message,
			})
		}
		out.Files = append(out.Files, entry)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func addConvertFlags(cmd *cobra.Command, cfg *config.Config, flags *convertFlags) {
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "convert without writing output files")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "trace every rule application")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().IntVar(&cfg.MaxIterations, "max-iterations", 0,
		"bound on repeated rule application (0 = default)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringToStringVar(&flags.properties, "property", nil,
		"boilerplate property override as name=value (repeatable)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat diagnostics as failures for exit code")
}
