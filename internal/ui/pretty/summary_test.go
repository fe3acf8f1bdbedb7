package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conwaymd/conwaymd/internal/ui/pretty"
	"github.com/conwaymd/conwaymd/pkg/runner"
)

func TestFormatSummaryOneLine(t *testing.T) {
	styles := pretty.NewStyles(false)

	t.Run("clean run", func(t *testing.T) {
		out := styles.FormatSummaryOneLine(runner.Stats{
			FilesDiscovered: 3,
			FilesConverted:  3,
			FilesWritten:    2,
		})

		assert.Contains(t, out, "3 files converted")
		assert.Contains(t, out, "(2 written)")
		assert.NotContains(t, out, "failed")
		assert.NotContains(t, out, "issue")
	})

	t.Run("singular file", func(t *testing.T) {
		out := styles.FormatSummaryOneLine(runner.Stats{
			FilesDiscovered: 1,
			FilesConverted:  1,
		})

		assert.Contains(t, out, "1 file converted")
	})

	t.Run("with issues", func(t *testing.T) {
		out := styles.FormatSummaryOneLine(runner.Stats{
			FilesConverted:   2,
			DiagnosticsTotal: 1,
			FilesWithIssues:  1,
		})

		assert.Contains(t, out, "1 issue in 1 file")
	})

	t.Run("with failures and skips", func(t *testing.T) {
		out := styles.FormatSummaryOneLine(runner.Stats{
			FilesConverted: 4,
			FilesErrored:   2,
			FilesSkipped:   1,
		})

		assert.Contains(t, out, "2 failed")
		assert.Contains(t, out, "1 skipped")
	})
}

func TestFormatSummary(t *testing.T) {
	styles := pretty.NewStyles(false)

	t.Run("clean run", func(t *testing.T) {
		out := styles.FormatSummary(runner.Stats{
			FilesDiscovered: 5,
			FilesConverted:  5,
			FilesWritten:    5,
		})

		assert.Contains(t, out, "Summary")
		assert.Contains(t, out, "Files discovered:  5")
		assert.Contains(t, out, "Files converted:   5")
		assert.Contains(t, out, "Files written:     5")
		assert.Contains(t, out, "Conversion completed")
		assert.NotContains(t, out, "Total issues")
	})

	t.Run("with issues", func(t *testing.T) {
		out := styles.FormatSummary(runner.Stats{
			FilesDiscovered:  2,
			FilesConverted:   2,
			DiagnosticsTotal: 3,
			FilesWithIssues:  1,
		})

		assert.Contains(t, out, "Total issues:      3")
		assert.Contains(t, out, "Files with issues: 1")
		assert.Contains(t, out, "Conversion completed with issues")
	})

	t.Run("with failures", func(t *testing.T) {
		out := styles.FormatSummary(runner.Stats{
			FilesDiscovered: 2,
			FilesConverted:  1,
			FilesErrored:    1,
		})

		assert.Contains(t, out, "Files failed:      1")
		assert.Contains(t, out, "Conversion failed")
	})
}

func TestFormatSummary_MaxWidthCapsDivider(t *testing.T) {
	styles := pretty.NewStyles(false)
	styles.MaxWidth = 10

	out := styles.FormatSummary(runner.Stats{FilesDiscovered: 1, FilesConverted: 1})

	assert.Contains(t, out, strings.Repeat("-", 10)+"\n")
	assert.NotContains(t, out, strings.Repeat("-", 11))
}
