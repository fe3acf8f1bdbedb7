package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/conwaymd/conwaymd/pkg/runner"
)

func writeFiles(t *testing.T, dir string, names []string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("content\n"), 0644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
}

func TestDiscover_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cmdFile := filepath.Join(dir, "index.cmd")
	if err := os.WriteFile(cmdFile, []byte("Hello.\n"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	ctx := context.Background()
	opts := runner.Options{
		Paths:      []string{cmdFile},
		WorkingDir: dir,
	}

	files, err := runner.Discover(ctx, opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}

	if files[0] != cmdFile {
		t.Errorf("expected %s, got %s", cmdFile, files[0])
	}
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, []string{
		"index.cmd",
		"docs/guide.cmd",
		"docs/api.cmd",
		"src/main.go",
		"notes.txt",
	})

	ctx := context.Background()
	opts := runner.Options{
		Paths:      []string{"."},
		WorkingDir: dir,
	}

	found, err := runner.Discover(ctx, opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(found) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(found), found)
	}
	for _, f := range found {
		if filepath.Ext(f) != ".cmd" {
			t.Errorf("unexpected non-source file discovered: %s", f)
		}
	}
}

func TestDiscover_DeterministicOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, []string{"c.cmd", "a.cmd", "b.cmd"})

	ctx := context.Background()
	opts := runner.Options{Paths: []string{"."}, WorkingDir: dir}

	found, err := runner.Discover(ctx, opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.cmd"),
		filepath.Join(dir, "b.cmd"),
		filepath.Join(dir, "c.cmd"),
	}
	if len(found) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(found))
	}
	for i := range want {
		if found[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], found[i])
		}
	}
}

func TestDiscover_SkipsHiddenDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, []string{
		"visible.cmd",
		".hidden/secret.cmd",
	})

	ctx := context.Background()
	opts := runner.Options{Paths: []string{"."}, WorkingDir: dir}

	found, err := runner.Discover(ctx, opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(found) != 1 {
		t.Fatalf("expected 1 file, got %d: %v", len(found), found)
	}
	if filepath.Base(found[0]) != "visible.cmd" {
		t.Errorf("expected visible.cmd, got %s", found[0])
	}
}

func TestDiscover_SkipsVendoredDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, []string{
		"index.cmd",
		"node_modules/pkg/readme.cmd",
		"vendor/lib/doc.cmd",
	})

	ctx := context.Background()
	opts := runner.Options{Paths: []string{"."}, WorkingDir: dir}

	found, err := runner.Discover(ctx, opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(found) != 1 {
		t.Fatalf("expected 1 file, got %d: %v", len(found), found)
	}
}

func TestDiscover_ExcludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, []string{
		"index.cmd",
		"drafts/wip.cmd",
	})

	ctx := context.Background()
	opts := runner.Options{
		Paths:        []string{"."},
		WorkingDir:   dir,
		ExcludeGlobs: []string{"drafts/**"},
	}

	found, err := runner.Discover(ctx, opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(found) != 1 {
		t.Fatalf("expected 1 file, got %d: %v", len(found), found)
	}
	if filepath.Base(found[0]) != "index.cmd" {
		t.Errorf("expected index.cmd, got %s", found[0])
	}
}

func TestDiscover_IncludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, []string{
		"index.cmd",
		"docs/guide.cmd",
	})

	ctx := context.Background()
	opts := runner.Options{
		Paths:        []string{"."},
		WorkingDir:   dir,
		IncludeGlobs: []string{"docs/**"},
	}

	found, err := runner.Discover(ctx, opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(found) != 1 {
		t.Fatalf("expected 1 file, got %d: %v", len(found), found)
	}
	if filepath.Base(found[0]) != "guide.cmd" {
		t.Errorf("expected guide.cmd, got %s", found[0])
	}
}

func TestDiscover_Deduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, []string{"index.cmd"})

	ctx := context.Background()
	opts := runner.Options{
		Paths:      []string{".", "index.cmd"},
		WorkingDir: dir,
	}

	found, err := runner.Discover(ctx, opts)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(found) != 1 {
		t.Fatalf("expected 1 file after deduplication, got %d: %v", len(found), found)
	}
}

func TestDiscover_MissingPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	opts := runner.Options{
		Paths:      []string{"does-not-exist.cmd"},
		WorkingDir: t.TempDir(),
	}

	_, err := runner.Discover(ctx, opts)
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, []string{"index.cmd"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{Paths: []string{"."}, WorkingDir: dir})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
