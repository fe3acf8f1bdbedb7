package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-enry/go-enry/v2"

	"github.com/conwaymd/conwaymd/internal/logging"
	"github.com/conwaymd/conwaymd/pkg/config"
	"github.com/conwaymd/conwaymd/pkg/convert"
	"github.com/conwaymd/conwaymd/pkg/fsutil"
)

// outputExtension is appended to the source name after stripping ".cmd".
const outputExtension = ".html"

// Runner orchestrates multi-file conversion of source documents to HTML.
type Runner struct {
	// Logger receives conversion warnings and verbose traces.
	// Nil disables logging.
	Logger *log.Logger
}

// New creates a new Runner.
func New(logger *log.Logger) *Runner {
	return &Runner{Logger: logger}
}

// Run discovers files under opts.Paths and converts them concurrently.
// It returns a deterministic collection of FileOutcome values and aggregate stats.
//
// The runner:
//   - Discovers files matching the options criteria
//   - Converts files concurrently using a worker pool
//   - Writes each output file atomically next to its source
//   - Aggregates results into a single Result with statistics
//   - Respects context cancellation
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	// Discover files.
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("discovery complete",
		logging.FieldFilesDiscovered, len(files),
		logging.FieldWorkingDir, workDir,
	)

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
	}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	// Determine job count.
	jobs := cfg.Jobs
	if opts.Jobs > 0 {
		jobs = opts.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	// Don't use more workers than files.
	if jobs > len(files) {
		jobs = len(files)
	}

	// Create channels.
	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup

	// Start workers.
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, workDir, cfg)
		}()
	}

	// Feed work in a separate goroutine.
	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	// Close outCh when all workers are done.
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Collect results.
	// Use a map to maintain order since workers may complete out of order.
	outcomes := make(map[string]FileOutcome, len(files))

	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	// Build result in deterministic order.
	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	// Check for context error.
	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// worker converts files from workCh and sends outcomes to outCh.
func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- FileOutcome,
	workDir string,
	cfg *config.Config,
) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := r.convertFile(ctx, path, workDir, cfg)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// convertFile reads a source document, converts it, and writes the
// HTML output next to it.
func (r *Runner) convertFile(ctx context.Context, path, workDir string, cfg *config.Config) FileOutcome {
	outcome := FileOutcome{Path: path}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = fmt.Errorf("read %s: %w", path, err)
		return outcome
	}

	if enry.IsBinary(content) {
		outcome.Skipped = true
		outcome.SkipReason = "binary content"
		return outcome
	}

	// Document and inclusion names are relative to the working directory.
	relPath, err := filepath.Rel(workDir, path)
	if err != nil {
		relPath = path
	}
	relPath = filepath.ToSlash(relPath)

	convOpts := []convert.Option{
		convert.WithProperties(cfg.Properties),
		convert.WithVerbose(cfg.Verbose),
		convert.WithIncluder(fileIncluder(workDir)),
	}
	if cfg.MaxIterations > 0 {
		convOpts = append(convOpts, convert.WithMaxIterations(cfg.MaxIterations))
	}
	if r.Logger != nil {
		convOpts = append(convOpts, convert.WithLogger(r.Logger))
	}

	converted, err := convert.Convert(string(content), relPath, convOpts...)
	if err != nil {
		outcome.Error = fmt.Errorf("convert %s: %w", relPath, err)
		return outcome
	}

	outcome.Diagnostics = converted.Diagnostics
	outcome.OutputPath = outputPath(path)

	if cfg.DryRun {
		return outcome
	}

	// If the source changed while we were converting, the output would
	// not correspond to any version of the file. Report it instead of
	// writing a mixed result.
	modified, err := fsutil.CheckModifiedQuick(ctx, info)
	if err == nil && modified {
		outcome.Error = fmt.Errorf("source %s changed during conversion", relPath)
		return outcome
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, outcome.OutputPath, []byte(converted.HTML), 0)
	if err != nil {
		outcome.Error = fmt.Errorf("write %s: %w", outcome.OutputPath, err)
		return outcome
	}
	outcome.Written = written

	return outcome
}

// outputPath derives the HTML output path for a source file.
func outputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + outputExtension
}

// fileIncluder resolves rule-file inclusions against the working directory.
func fileIncluder(workDir string) convert.Includer {
	return func(name string) (string, error) {
		content, err := os.ReadFile(filepath.Join(workDir, filepath.FromSlash(name)))
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
}
