package runner

import "github.com/conwaymd/conwaymd/pkg/convert"

// FileOutcome records the conversion of a single source document.
type FileOutcome struct {
	// Path is the source file path that was processed.
	Path string

	// OutputPath is the path of the generated HTML file.
	// Empty when the file was skipped before conversion.
	OutputPath string

	// Diagnostics are the non-fatal issues reported during conversion.
	Diagnostics []convert.Diagnostic

	// Written reports whether the output file was written or updated.
	// False in dry-run mode and when the output was already up to date.
	Written bool

	// Skipped reports that the file was not converted (e.g. binary content).
	Skipped bool

	// SkipReason explains why the file was skipped.
	SkipReason string

	// Error is set if the file could not be converted.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int `json:"files_discovered"`

	// FilesConverted is the number of files successfully converted.
	FilesConverted int `json:"files_converted"`

	// FilesSkipped is the number of files skipped before conversion.
	FilesSkipped int `json:"files_skipped"`

	// FilesErrored is the number of files that encountered errors.
	FilesErrored int `json:"files_errored"`

	// FilesWritten is the number of output files written or updated.
	FilesWritten int `json:"files_written"`

	// FilesWithIssues is the number of files with at least one diagnostic.
	FilesWithIssues int `json:"files_with_issues"`

	// DiagnosticsTotal is the total number of diagnostics across all files.
	DiagnosticsTotal int `json:"diagnostics_total"`
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file.
	// Files are ordered deterministically (by path).
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Errors contains any non-file-specific errors encountered.
	Errors []error
}

// HasFailures reports whether any file failed to convert.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

// HasIssues reports whether any diagnostics were reported.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.DiagnosticsTotal > 0
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	if outcome.Skipped {
		r.Stats.FilesSkipped++
		return
	}

	r.Stats.FilesConverted++

	if outcome.Written {
		r.Stats.FilesWritten++
	}

	if diagCount := len(outcome.Diagnostics); diagCount > 0 {
		r.Stats.DiagnosticsTotal += diagCount
		r.Stats.FilesWithIssues++
	}
}
