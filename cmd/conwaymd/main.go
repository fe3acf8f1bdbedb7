// Package main is the entry point for the conwaymd CLI.
package main

import (
	"errors"
	"os"

	"github.com/conwaymd/conwaymd/internal/cli"
	"github.com/conwaymd/conwaymd/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Build and execute the root command.
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, cli.ErrConversionFailed):
			return cli.ExitConversionErrors
		case errors.Is(err, cli.ErrIssuesFound):
			return cli.ExitConversionIssues
		}
		logger := logging.Default()
		logger.Error("command failed", logging.FieldError, err)
		return 1
	}

	return 0
}
