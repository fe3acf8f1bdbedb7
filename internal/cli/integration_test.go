package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conwaymd/conwaymd/internal/cli"
)

func buildInfo() cli.BuildInfo {
	return cli.BuildInfo{
		Version: "test",
		Commit:  "test",
		Date:    "test",
	}
}

// execute runs the root command with the given args, capturing stdout and
// stderr. Commands run relative to the current working directory, so tests
// use t.Chdir into a temp dir first.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(buildInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String() + stderr.String(), err
}

func TestIntegration_ConvertSingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	source := "--\nHello, world.\n--\n"
	require.NoError(t, os.WriteFile("index.cmd", []byte(source), 0644))

	output, err := execute(t, "convert", "--color", "never", "index.cmd")
	require.NoError(t, err)

	html, readErr := os.ReadFile("index.html")
	require.NoError(t, readErr)
	assert.Contains(t, string(html), "<p>\nHello, world.\n</p>")
	assert.Contains(t, string(html), "<!DOCTYPE html>")

	assert.Contains(t, output, "1 file converted")
}

func TestIntegration_ConvertDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	require.NoError(t, os.MkdirAll("docs", 0755))
	require.NoError(t, os.WriteFile(filepath.Join("docs", "a.cmd"), []byte("First.\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join("docs", "b.cmd"), []byte("Second.\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join("docs", "notes.txt"), []byte("not cmd\n"), 0644))

	output, err := execute(t, "convert", "--color", "never", "docs")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join("docs", "a.html"))
	assert.FileExists(t, filepath.Join("docs", "b.html"))
	assert.NoFileExists(t, filepath.Join("docs", "notes.html"))

	assert.Contains(t, output, "2 files converted")
}

func TestIntegration_DryRunWritesNothing(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	require.NoError(t, os.WriteFile("index.cmd", []byte("Hello.\n"), 0644))

	_, err := execute(t, "convert", "--color", "never", "--dry-run", "index.cmd")
	require.NoError(t, err)

	assert.NoFileExists(t, "index.html")
}

func TestIntegration_PropertyFlag(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	require.NoError(t, os.WriteFile("index.cmd", []byte("Welcome.\n"), 0644))

	_, err := execute(t, "convert", "--color", "never",
		"--property", "title=Home", "--property", "lang=fr", "index.cmd")
	require.NoError(t, err)

	html, readErr := os.ReadFile("index.html")
	require.NoError(t, readErr)
	assert.Contains(t, string(html), "<title>Home</title>")
	assert.Contains(t, string(html), `<html lang="fr">`)
}

func TestIntegration_ConfigFileProperties(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	configContent := "properties:\n  lang: de\n"
	require.NoError(t, os.WriteFile("conwaymd.yaml", []byte(configContent), 0644))
	require.NoError(t, os.WriteFile("index.cmd", []byte("Hallo.\n"), 0644))

	_, err := execute(t, "convert", "--color", "never", "index.cmd")
	require.NoError(t, err)

	html, readErr := os.ReadFile("index.html")
	require.NoError(t, readErr)
	assert.Contains(t, string(html), `<html lang="de">`)
}

func TestIntegration_CLIPropertyOverridesConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	configContent := "properties:\n  title: From Config\n"
	require.NoError(t, os.WriteFile("conwaymd.yaml", []byte(configContent), 0644))
	require.NoError(t, os.WriteFile("index.cmd", []byte("Body.\n"), 0644))

	_, err := execute(t, "convert", "--color", "never",
		"--property", "title=From Flag", "index.cmd")
	require.NoError(t, err)

	html, readErr := os.ReadFile("index.html")
	require.NoError(t, readErr)
	assert.Contains(t, string(html), "<title>From Flag</title>")
	assert.NotContains(t, string(html), "From Config")
}

func TestIntegration_IgnoreFlag(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	require.NoError(t, os.MkdirAll("drafts", 0755))
	require.NoError(t, os.WriteFile("index.cmd", []byte("Keep.\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join("drafts", "wip.cmd"), []byte("Skip.\n"), 0644))

	_, err := execute(t, "convert", "--color", "never", "--ignore", "drafts/**", ".")
	require.NoError(t, err)

	assert.FileExists(t, "index.html")
	assert.NoFileExists(t, filepath.Join("drafts", "wip.html"))
}

// spoiledRulesSource declares a rule with an unknown attribute, which
// records a diagnostic but still converts.
const spoiledRulesSource = `OrdinaryDictionaryReplacement: #broken
- no_such_attribute: VALUE

%%%
Content survives.
`

func TestIntegration_StrictMode(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	require.NoError(t, os.WriteFile("page.cmd", []byte(spoiledRulesSource), 0644))

	// Without --strict, diagnostics do not fail the run.
	output, err := execute(t, "convert", "--color", "never", "page.cmd")
	require.NoError(t, err)
	assert.Contains(t, output, "issue")

	// With --strict, diagnostics fail the run.
	_, err = execute(t, "convert", "--color", "never", "--strict", "page.cmd")
	require.ErrorIs(t, err, cli.ErrIssuesFound)

	html, readErr := os.ReadFile("page.html")
	require.NoError(t, readErr)
	assert.Contains(t, string(html), "Content survives.")
}

func TestIntegration_JSONOutput(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	require.NoError(t, os.WriteFile("index.cmd", []byte("Hello.\n"), 0644))

	output, err := execute(t, "convert", "--format", "json", "--color", "never", "index.cmd")
	require.NoError(t, err)

	assert.Contains(t, output, `"files"`)
	assert.Contains(t, output, `"stats"`)
	assert.Contains(t, output, `"files_converted": 1`)
	assert.Contains(t, output, `"written": true`)
}

// TestIntegration_RulesCommand verifies that the rules command legislates
// the standard cascade without error. The listing goes to os.Stdout via
// logging, so output is not captured here.
func TestIntegration_RulesCommand(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	_, err := execute(t, "rules")
	require.NoError(t, err)
}

func TestIntegration_RulesCommandWithFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	source := `OrdinaryDictionaryReplacement: #site-name
- queue_position: BEFORE #headings
* SITE_NAME --> Example

%%%
SITE_NAME
`
	require.NoError(t, os.WriteFile("page.cmd", []byte(source), 0644))

	_, err := execute(t, "rules", "page.cmd")
	require.NoError(t, err)

	_, err = execute(t, "rules", "--format", "json", "page.cmd")
	require.NoError(t, err)
}

func TestIntegration_RulesCommandMissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	_, err := execute(t, "rules", "no-such-file.cmd")
	require.Error(t, err)
}

func TestIntegration_InitCommand(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	_, err := execute(t, "init")
	require.NoError(t, err)
	assert.FileExists(t, "conwaymd.yaml")

	// A second init without --force refuses to overwrite.
	_, err = execute(t, "init")
	require.Error(t, err)

	_, err = execute(t, "init", "--force")
	require.NoError(t, err)
}

func TestIntegration_InitCommandJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	_, err := execute(t, "init", "--format", "json", "--output", "custom.json")
	require.NoError(t, err)
	assert.FileExists(t, "custom.json")

	content, readErr := os.ReadFile("custom.json")
	require.NoError(t, readErr)
	assert.Contains(t, string(content), `"properties"`)
}

func TestIntegration_InitGeneratedConfigLoads(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	_, err := execute(t, "init", "--full")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile("index.cmd", []byte("Hello.\n"), 0644))

	_, err = execute(t, "convert", "--color", "never", "index.cmd")
	require.NoError(t, err)
	assert.FileExists(t, "index.html")
}

func TestIntegration_UnchangedOutputSecondRun(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	require.NoError(t, os.WriteFile("index.cmd", []byte("Stable.\n"), 0644))

	output, err := execute(t, "convert", "--color", "never", "index.cmd")
	require.NoError(t, err)
	assert.Contains(t, output, "(1 written)")

	output, err = execute(t, "convert", "--color", "never", "index.cmd")
	require.NoError(t, err)
	assert.Contains(t, output, "1 file converted")
	assert.NotContains(t, output, "written")
}
