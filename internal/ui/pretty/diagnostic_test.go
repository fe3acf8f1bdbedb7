package pretty_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conwaymd/conwaymd/internal/ui/pretty"
	"github.com/conwaymd/conwaymd/pkg/convert"
	"github.com/conwaymd/conwaymd/pkg/runner"
)

func TestFormatDiagnostic(t *testing.T) {
	styles := pretty.NewStyles(false)

	t.Run("with single line", func(t *testing.T) {
		out := styles.FormatDiagnostic(convert.Diagnostic{
			File:    "docs/page.cmd",
			Line:    12,
			Message: "invalid syntax `- nonsense`",
		})

		assert.Contains(t, out, "docs/page.cmd:12")
		assert.Contains(t, out, "warning")
		assert.Contains(t, out, "invalid syntax `- nonsense`")
	})

	t.Run("with line range", func(t *testing.T) {
		out := styles.FormatDiagnostic(convert.Diagnostic{
			File:    "index.cmd",
			Line:    3,
			EndLine: 7,
			Message: "missing delimiter",
		})

		assert.Contains(t, out, "index.cmd:3-7")
	})

	t.Run("without line", func(t *testing.T) {
		out := styles.FormatDiagnostic(convert.Diagnostic{
			File:    "index.cmd",
			Message: "something",
		})

		assert.Contains(t, out, "index.cmd")
		assert.NotContains(t, out, ":0")
	})
}

func TestFormatOutcome(t *testing.T) {
	styles := pretty.NewStyles(false)

	t.Run("written", func(t *testing.T) {
		out := styles.FormatOutcome(runner.FileOutcome{
			Path:       "index.cmd",
			OutputPath: "index.html",
			Written:    true,
		}, false)

		assert.Contains(t, out, "converted")
		assert.Contains(t, out, "index.cmd")
		assert.Contains(t, out, "index.html")
	})

	t.Run("unchanged is silent unless verbose", func(t *testing.T) {
		outcome := runner.FileOutcome{Path: "index.cmd", OutputPath: "index.html"}

		assert.Empty(t, styles.FormatOutcome(outcome, false))
		assert.Contains(t, styles.FormatOutcome(outcome, true), "unchanged")
	})

	t.Run("skipped with reason", func(t *testing.T) {
		out := styles.FormatOutcome(runner.FileOutcome{
			Path:       "image.cmd",
			Skipped:    true,
			SkipReason: "binary content",
		}, false)

		assert.Contains(t, out, "skipped")
		assert.Contains(t, out, "binary content")
	})

	t.Run("error", func(t *testing.T) {
		out := styles.FormatOutcome(runner.FileOutcome{
			Path:  "broken.cmd",
			Error: errors.New("read failed"),
		}, false)

		assert.Contains(t, out, "error")
		assert.Contains(t, out, "read failed")
	})

	t.Run("diagnostics appended", func(t *testing.T) {
		out := styles.FormatOutcome(runner.FileOutcome{
			Path:       "index.cmd",
			OutputPath: "index.html",
			Written:    true,
			Diagnostics: []convert.Diagnostic{
				{File: "index.cmd", Line: 2, Message: "first"},
				{File: "index.cmd", Line: 5, Message: "second"},
			},
		}, false)

		assert.Equal(t, 3, strings.Count(out, "\n"))
		assert.Contains(t, out, "first")
		assert.Contains(t, out, "second")
	})
}

func TestFormatFileHeader(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Equal(t, "index.cmd", styles.FormatFileHeader("index.cmd", 0))
	assert.Equal(t, "index.cmd (2 issues)", styles.FormatFileHeader("index.cmd", 2))
}
