package convert

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// substitution is one pattern-to-substitute pair of a dictionary rule.
type substitution struct {
	pattern    string
	substitute string
}

// substitutionList keeps substitutions in declaration order. Redeclaring
// a pattern overwrites its substitute in place.
type substitutionList []substitution

func (l substitutionList) add(pattern, substitute string) substitutionList {
	for i := range l {
		if l[i].pattern == pattern {
			l[i].substitute = substitute
			return l
		}
	}
	return append(l, substitution{pattern, substitute})
}

// OrdinaryDictionaryRule substitutes literal strings. In simultaneous
// mode a single left-to-right pass is made and earlier-declared
// patterns win at a given position; in sequential mode the whole list
// of substitutions is repeated until the text stops changing.
type OrdinaryDictionaryRule struct {
	ruleBase
	substitutions          substitutionList
	applySequentially      bool
	concludingReplacements []Rule

	simultaneousPattern *regexp2.Regexp
}

func (r *OrdinaryDictionaryRule) commit() error {
	if r.applySequentially || len(r.substitutions) == 0 {
		return nil
	}
	alternatives := make([]string, 0, len(r.substitutions))
	for _, s := range r.substitutions {
		alternatives = append(alternatives, regexp2.Escape(s.pattern))
	}
	pattern, err := compilePattern(strings.Join(alternatives, "|"), regexp2.None)
	if err != nil {
		return err
	}
	r.simultaneousPattern = pattern
	return nil
}

func (r *OrdinaryDictionaryRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	if r.applySequentially {
		return r.sequentialApply(text)
	}
	return r.simultaneousApply(text)
}

func (r *OrdinaryDictionaryRule) simultaneousApply(text string) (string, error) {
	if r.simultaneousPattern == nil {
		return text, nil
	}
	return replaceAll(r.simultaneousPattern, text, -1, func(m *regexp2.Match) (string, error) {
		substitute := r.substituteFor(m.String())
		return applyAll(r.concludingReplacements, substitute, nil)
	})
}

func (r *OrdinaryDictionaryRule) substituteFor(pattern string) string {
	for _, s := range r.substitutions {
		if s.pattern == pattern {
			return s.substitute
		}
	}
	return pattern
}

// sequentialApply repeats the substitution pass until the text settles.
// Hitting the iteration bound while the text is still changing is an
// error, since the substitutions then never reach a fixed point.
func (r *OrdinaryDictionaryRule) sequentialApply(text string) (string, error) {
	for iteration := 0; ; iteration++ {
		if iteration >= r.env.maxIterations {
			return text, fmt.Errorf("rule #%s: %w", r.id, ErrIterationBound)
		}
		previous := text
		for _, s := range r.substitutions {
			text = strings.ReplaceAll(text, s.pattern, s.substitute)
		}
		if text == previous {
			break
		}
	}
	return applyAll(r.concludingReplacements, text, nil)
}

// RegexDictionaryRule substitutes regex patterns in declaration order,
// expanding group references in each substitute.
type RegexDictionaryRule struct {
	ruleBase
	substitutions          substitutionList
	concludingReplacements []Rule

	compiled []*regexp2.Regexp
}

func (r *RegexDictionaryRule) commit() error {
	r.compiled = make([]*regexp2.Regexp, 0, len(r.substitutions))
	for _, s := range r.substitutions {
		pattern, err := compileRulePattern(s.pattern)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", s.pattern, err)
		}
		r.compiled = append(r.compiled, pattern)
	}
	return nil
}

func (r *RegexDictionaryRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	var err error
	for i, pattern := range r.compiled {
		template := r.substitutions[i].substitute
		text, err = replaceAll(pattern, text, -1, func(m *regexp2.Match) (string, error) {
			expanded, err := expandTemplate(m, template)
			if err != nil {
				return "", err
			}
			return applyAll(r.concludingReplacements, expanded, nil)
		})
		if err != nil {
			return text, err
		}
	}
	return text, nil
}
