package convert

import (
	"errors"
	"fmt"
)

// ErrIterationBound indicates that a bounded repetition (a SEQUENTIAL
// rule, an inline fixed-point pass, or placeholder resolution) was still
// producing changes when its iteration cap was reached.
var ErrIterationBound = errors.New("iteration bound reached while text still changing")

// Diagnostic is a localized, non-fatal problem found while parsing
// replacement rules or converting content. The offending construct is
// skipped or rendered literally and conversion continues.
type Diagnostic struct {
	File    string
	Line    int
	EndLine int
	Message string
}

func (d Diagnostic) String() string {
	location := d.File
	if d.Line > 0 {
		if d.EndLine > d.Line {
			location = fmt.Sprintf("%s, lines %d to %d", d.File, d.Line, d.EndLine)
		} else {
			location = fmt.Sprintf("%s, line %d", d.File, d.Line)
		}
	}
	return fmt.Sprintf("%s: %s", location, d.Message)
}

// RegistryError is a registry integrity violation: a redeclaration that
// changes a rule's class, or a second root rule. These corrupt the
// cascade's ordering guarantees, so the whole conversion fails.
type RegistryError struct {
	RuleID  string
	File    string
	Line    int
	Message string
}

func (e *RegistryError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("registry: `%s`, line %d: rule #%s: %s", e.File, e.Line, e.RuleID, e.Message)
	}
	return fmt.Sprintf("registry: rule #%s: %s", e.RuleID, e.Message)
}

// ResolutionError is an internal consistency failure: placeholder tokens
// remained after the final resolution pass, indicating a rule produced a
// cycle. Distinct from user syntax errors, which surface as Diagnostics.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("internal: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// declarationError aborts processing of one rule declaration. It is
// caught inside the rule parser, converted to a Diagnostic, and the
// offending rule is skipped.
type declarationError struct {
	message string
}

func (e *declarationError) Error() string {
	return e.message
}

func declarationErrorf(format string, args ...any) *declarationError {
	return &declarationError{message: fmt.Sprintf(format, args...)}
}
