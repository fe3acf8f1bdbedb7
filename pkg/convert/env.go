package convert

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/conwaymd/conwaymd/pkg/attrspec"
	"github.com/conwaymd/conwaymd/pkg/placeholder"
)

// DefaultMaxIterations bounds every repeated-application loop in the
// engine: SEQUENTIAL rule passes, inline delimiter fixed points, and
// placeholder resolution. Hitting the bound while the text is still
// changing is reported as an error rather than looping forever.
const DefaultMaxIterations = 100

// environment is the per-conversion state shared by every rule in one
// registry: the placeholder store, the reference definitions, the
// iteration bound, and the diagnostics sink. Conversions never share an
// environment, so rules need no synchronisation.
type environment struct {
	store         *placeholder.Store
	refs          *ReferenceMap
	logger        *log.Logger
	verbose       bool
	maxIterations int
	diagnostics   []Diagnostic
}

func newEnvironment(logger *log.Logger, verbose bool, maxIterations int) *environment {
	if maxIterations < 1 {
		maxIterations = DefaultMaxIterations
	}
	return &environment{
		store:         placeholder.NewStore(),
		refs:          NewReferenceMap(),
		logger:        logger,
		verbose:       verbose,
		maxIterations: maxIterations,
	}
}

func (e *environment) diagf(file string, line, endLine int, format string, args ...any) {
	d := Diagnostic{File: file, Line: line, EndLine: endLine}
	d.Message = fmt.Sprintf(format, args...)
	e.diagnostics = append(e.diagnostics, d)
	if e.logger != nil {
		e.logger.Warn(d.Message, "file", file, "line", line)
	}
}

// attributesSequence renders combined attribute specification text as a
// placeholder-protected HTML attribute sequence. A grammar error in the
// specifications is localized: a diagnostic is recorded and the owning
// element renders without attributes.
func (e *environment) attributesSequence(specifications string) string {
	sequence, err := attrspec.Build(specifications, e.store.Unprotect)
	if err != nil {
		e.diagf("", 0, 0, "%v; element rendered without attributes", err)
		return ""
	}
	return e.store.Protect(sequence)
}

func (e *environment) trace(id, before, after string) {
	if !e.verbose || e.logger == nil {
		return
	}
	if before == after {
		e.logger.Debug("rule applied", "rule", "#"+id, "changed", false)
		return
	}
	e.logger.Debug("rule applied", "rule", "#"+id, "changed", true, "length", len(after))
}
