package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single regex application so a pathological
// user-supplied pattern cannot hang a conversion.
const matchTimeout = 10 * time.Second

// ruleOptions is the dialect rule patterns are written in: free-spacing
// with ^ and $ matching at line boundaries.
const ruleOptions = regexp2.IgnorePatternWhitespace | regexp2.Multiline

// compileRulePattern compiles a pattern in the rule dialect.
func compileRulePattern(pattern string) (*regexp2.Regexp, error) {
	return compilePattern(pattern, ruleOptions)
}

// compileSpanPattern compiles a free-spacing pattern without line
// anchoring, for constructs that must not straddle lines via ^ or $.
func compileSpanPattern(pattern string) (*regexp2.Regexp, error) {
	return compilePattern(pattern, regexp2.IgnorePatternWhitespace)
}

func compilePattern(pattern string, options regexp2.RegexOptions) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, options)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = matchTimeout
	return re, nil
}

// escapeLiteral escapes a literal string for embedding in a rule
// pattern. Non-alphanumeric characters are wrapped in character
// classes, which stay significant under free-spacing mode.
func escapeLiteral(literal string) string {
	var builder strings.Builder
	for _, r := range literal {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			builder.WriteRune(r)
		case r == '\n':
			builder.WriteString(`\n`)
		case r == ']', r == '\\', r == '^':
			builder.WriteString(`[\`)
			builder.WriteRune(r)
			builder.WriteByte(']')
		default:
			builder.WriteByte('[')
			builder.WriteRune(r)
			builder.WriteByte(']')
		}
	}
	return builder.String()
}

// group returns a named capture group in the rule dialect.
func group(name, pattern string) string {
	return "(?<" + name + ">" + pattern + ")"
}

// replaceAll substitutes every match of re in text using evaluate,
// which may reject a match by returning an error. count bounds the
// number of substitutions; pass -1 for all.
func replaceAll(re *regexp2.Regexp, text string, count int, evaluate func(*regexp2.Match) (string, error)) (string, error) {
	var evalErr error
	result, err := re.ReplaceFunc(text, func(mv regexp2.Match) string {
		m := &mv
		if evalErr != nil {
			return m.String()
		}
		replacement, err := evaluate(m)
		if err != nil {
			evalErr = err
			return m.String()
		}
		return replacement
	}, -1, count)
	if evalErr != nil {
		return text, evalErr
	}
	if err != nil {
		return text, err
	}
	return result, nil
}

// groupValue returns the captured text of a named group, or "" when the
// group did not participate in the match.
func groupValue(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}

// groupPresent reports whether a named group participated in the match.
// An empty capture still counts as present.
func groupPresent(m *regexp2.Match, name string) bool {
	g := m.GroupByName(name)
	return g != nil && len(g.Captures) > 0
}

// escapeTemplate escapes a literal value for safe insertion into a
// substitution template.
func escapeTemplate(literal string) string {
	literal = strings.ReplaceAll(literal, `\`, `\\`)
	return strings.ReplaceAll(literal, `$`, `$$`)
}

// expandTemplate expands a substitution template against a match.
// Supported references are $$ for a literal dollar, $0 through $9 for
// numbered groups, and ${name} for named groups, alongside the escapes
// \\ \n \t for literal backslash, newline, and tab.
func expandTemplate(m *regexp2.Match, template string) (string, error) {
	var builder strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '\\':
			if i+1 >= len(template) {
				return "", fmt.Errorf("trailing backslash in substitution %q", template)
			}
			i++
			switch template[i] {
			case '\\':
				builder.WriteByte('\\')
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			default:
				return "", fmt.Errorf("unrecognised escape %q in substitution %q", template[i-1:i+1], template)
			}
		case '$':
			if i+1 >= len(template) {
				return "", fmt.Errorf("trailing dollar in substitution %q", template)
			}
			i++
			next := template[i]
			switch {
			case next == '$':
				builder.WriteByte('$')
			case next >= '0' && next <= '9':
				number := int(next - '0')
				g := m.GroupByNumber(number)
				if g == nil {
					return "", fmt.Errorf("no group %d in substitution %q", number, template)
				}
				builder.WriteString(g.String())
			case next == '{':
				end := strings.IndexByte(template[i:], '}')
				if end < 0 {
					return "", fmt.Errorf("unterminated group reference in substitution %q", template)
				}
				name := template[i+1 : i+end]
				g := m.GroupByName(name)
				if g == nil {
					return "", fmt.Errorf("no group %q in substitution %q", name, template)
				}
				builder.WriteString(g.String())
				i += end
			default:
				return "", fmt.Errorf("bad group reference at %q in substitution %q", template[i-1:i+1], template)
			}
		default:
			builder.WriteByte(c)
		}
	}
	return builder.String(), nil
}
