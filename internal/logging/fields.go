// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Conversion fields.
	FieldRule     = "rule"
	FieldLine     = "line"
	FieldJobs     = "jobs"
	FieldVerbose  = "verbose"
	FieldDuration = "duration"

	// Statistics fields.
	FieldFilesDiscovered  = "files_discovered"
	FieldFilesConverted   = "files_converted"
	FieldFilesWithIssues  = "files_with_issues"
	FieldDiagnosticsTotal = "diagnostics_total"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Rule fields.
	FieldName        = "name"
	FieldClass       = "class"
	FieldQueued      = "queued"
	FieldDescription = "description"
)
