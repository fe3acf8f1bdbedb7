package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conwaymd/conwaymd/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files converted (2 written), 1 issue in 1 file".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	convertedWord := wordFiles
	if stats.FilesConverted == 1 {
		convertedWord = wordFile
	}

	var parts []string

	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}

	converted := fmt.Sprintf("%d %s converted", stats.FilesConverted, convertedWord)
	if stats.FilesWritten > 0 {
		converted += s.Dim.Render(fmt.Sprintf(" (%d written)", stats.FilesWritten))
	}
	parts = append(parts, converted)

	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Skipped.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}

	if stats.DiagnosticsTotal > 0 {
		issueWord := "issues"
		if stats.DiagnosticsTotal == 1 {
			issueWord = "issue"
		}
		issueFileWord := wordFiles
		if stats.FilesWithIssues == 1 {
			issueFileWord = wordFile
		}
		parts = append(parts, s.Warning.Render(
			fmt.Sprintf("%d %s in %d %s", stats.DiagnosticsTotal, issueWord, stats.FilesWithIssues, issueFileWord)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", s.dividerWidth()))
	builder.WriteString("\n")

	// Files
	builder.WriteString("  Files discovered:  " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesDiscovered)) + "\n")
	builder.WriteString("  Files converted:   " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesConverted)) + "\n")

	if stats.FilesWritten > 0 {
		builder.WriteString("  Files written:     " +
			s.Success.Render(strconv.Itoa(stats.FilesWritten)) + "\n")
	}

	if stats.FilesSkipped > 0 {
		builder.WriteString("  Files skipped:     " +
			s.Skipped.Render(strconv.Itoa(stats.FilesSkipped)) + "\n")
	}

	if stats.FilesErrored > 0 {
		builder.WriteString("  Files failed:      " +
			s.Failure.Render(strconv.Itoa(stats.FilesErrored)) + "\n")
	}

	if stats.DiagnosticsTotal > 0 {
		builder.WriteString("\n")
		builder.WriteString("  Total issues:      " +
			s.Warning.Render(strconv.Itoa(stats.DiagnosticsTotal)) + "\n")
		builder.WriteString("  Files with issues: " +
			s.Warning.Render(strconv.Itoa(stats.FilesWithIssues)) + "\n")
	}

	builder.WriteString("\n")

	// Overall status
	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Conversion failed"))
	case stats.DiagnosticsTotal > 0:
		builder.WriteString(s.Warning.Render("Conversion completed with issues"))
	default:
		builder.WriteString(s.Success.Render("Conversion completed"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// dividerWidth caps the divider to MaxWidth for narrow terminals.
func (s *Styles) dividerWidth() int {
	if s.MaxWidth > 0 && s.MaxWidth < summaryDividerWidth {
		return s.MaxWidth
	}
	return summaryDividerWidth
}
