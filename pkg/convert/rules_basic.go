package convert

import (
	"strings"
	"unicode"
)

// SequenceRule applies a sequence of other rules as one queued rule.
type SequenceRule struct {
	ruleBase
	replacements []Rule
}

func (r *SequenceRule) commit() error {
	return nil
}

func (r *SequenceRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return applyAll(r.replacements, text, flags)
}

// PlaceholderMarkerRule protects raw occurrences of the placeholder
// marker in the source, so user-typed markers cannot be confused with
// minted tokens. Queued first.
type PlaceholderMarkerRule struct {
	ruleBase
}

func (r *PlaceholderMarkerRule) commit() error {
	return nil
}

func (r *PlaceholderMarkerRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return r.env.store.ProtectMarkers(text), nil
}

// PlaceholderProtectRule replaces its whole input with a placeholder
// token, shielding it from all later rules. Used as a concluding
// replacement by rules whose output must survive the cascade intact.
type PlaceholderProtectRule struct {
	ruleBase
}

func (r *PlaceholderProtectRule) commit() error {
	return nil
}

func (r *PlaceholderProtectRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return r.env.store.Protect(text), nil
}

// PlaceholderUnprotectRule restores placeholder tokens to their
// content. Queued last.
type PlaceholderUnprotectRule struct {
	ruleBase
}

func (r *PlaceholderUnprotectRule) commit() error {
	return nil
}

func (r *PlaceholderUnprotectRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return r.env.store.Unprotect(text), nil
}

// DeIndentRule strips the longest common indentation from its input.
type DeIndentRule struct {
	ruleBase
}

func (r *DeIndentRule) commit() error {
	return nil
}

func (r *DeIndentRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return deIndent(text), nil
}

// deIndent removes the longest common indentation across lines. Empty
// lines do not count towards the common indentation; whitespace-only
// lines do, except the last line, whose whitespace is erased outright.
func deIndent(text string) string {
	lines := strings.Split(text, "\n")
	last := len(lines) - 1
	if lines[last] != "" && strings.TrimFunc(lines[last], isLineSpace) == "" {
		lines[last] = ""
	}

	common := ""
	commonSet := false
	for _, line := range lines {
		if line == "" {
			continue
		}
		indentation := leadingLineSpace(line)
		if !commonSet {
			common = indentation
			commonSet = true
			continue
		}
		common = commonPrefix(common, indentation)
	}

	if common != "" {
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(line, common)
		}
	}
	return strings.Join(lines, "\n")
}

func isLineSpace(r rune) bool {
	return r != '\n' && unicode.IsSpace(r)
}

func leadingLineSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, isLineSpace))]
}

func commonPrefix(a, b string) string {
	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}
	i := 0
	for i < limit && a[i] == b[i] {
		i++
	}
	return a[:i]
}
