package cli

import "github.com/conwaymd/conwaymd/pkg/runner"

// Exit codes for conwaymd.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitConversionErrors indicates the run completed but files failed to convert.
	ExitConversionErrors = 1

	// ExitConversionIssues indicates conversion succeeded but recorded
	// diagnostics (when strict mode).
	ExitConversionIssues = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	if result.HasFailures() {
		return ExitConversionErrors
	}

	if strict && result.HasIssues() {
		return ExitConversionIssues
	}

	return ExitSuccess
}
