package pretty

import (
	"fmt"
	"strings"

	"github.com/conwaymd/conwaymd/pkg/convert"
	"github.com/conwaymd/conwaymd/pkg/runner"
)

// FormatDiagnostic formats a single conversion diagnostic for terminal output.
func (s *Styles) FormatDiagnostic(diag convert.Diagnostic) string {
	location := s.FilePath.Render(diag.File)
	if diag.Line > 0 {
		if diag.EndLine > diag.Line {
			location += s.Location.Render(fmt.Sprintf(":%d-%d", diag.Line, diag.EndLine))
		} else {
			location += s.Location.Render(fmt.Sprintf(":%d", diag.Line))
		}
	}

	return fmt.Sprintf("  %s  %s  %s\n",
		location,
		s.Warning.Render("warning"),
		s.Message.Render(diag.Message),
	)
}

// FormatOutcome formats a per-file conversion outcome line.
func (s *Styles) FormatOutcome(outcome runner.FileOutcome, verbose bool) string {
	var builder strings.Builder

	switch {
	case outcome.Error != nil:
		builder.WriteString(s.Failure.Render("error") + "      " +
			s.FilePath.Render(outcome.Path) + "\n")
		builder.WriteString("  " + s.Error.Render(outcome.Error.Error()) + "\n")
	case outcome.Skipped:
		builder.WriteString(s.Skipped.Render("skipped") + "    " +
			s.FilePath.Render(outcome.Path))
		if outcome.SkipReason != "" {
			builder.WriteString(s.Dim.Render(" (" + outcome.SkipReason + ")"))
		}
		builder.WriteString("\n")
	case outcome.Written:
		builder.WriteString(s.Written.Render("converted") + "  " +
			s.FilePath.Render(outcome.Path) + s.Dim.Render(" -> "+outcome.OutputPath) + "\n")
	default:
		if verbose {
			builder.WriteString(s.Unchanged.Render("unchanged") + "  " +
				s.FilePath.Render(outcome.Path) + "\n")
		}
	}

	for _, diag := range outcome.Diagnostics {
		builder.WriteString(s.FormatDiagnostic(diag))
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d issues)", issueCount))
	}
	return header
}
