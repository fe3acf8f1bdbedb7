// Package attrspec parses the attribute specification mini-language that
// appears between braces after an element's opening delimiter, and renders
// the parsed result as an HTML attribute sequence.
//
// Tokens are whitespace-separated and classified by shape:
//
//	#«id»              sets id
//	.«class»           appends to class
//	r«N» c«N»          rowspan, colspan
//	w«N» h«N»          width, height
//	«name»=«value»     arbitrary attribute (value may be quoted)
//	-«name»            omits the attribute
//	«name»             boolean attribute
//
// In the «name»=«value» form the reserved bare value \- marks the
// attribute as omitted and \/ assigns the empty string. The single-letter
// abbreviations #, ., l, r, c, w, h and s stand for id, class, lang,
// rowspan, colspan, width, height and style.
package attrspec

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Reserved bare values in the «name»=«value» form.
const (
	omitValue  = `\-`
	emptyValue = `\/`
)

var attributeNameFromAbbreviation = map[string]string{
	"#": "id",
	".": "class",
	"l": "lang",
	"r": "rowspan",
	"c": "colspan",
	"w": "width",
	"h": "height",
	"s": "style",
}

// SyntaxError reports a token that does not match any recognised
// specification shape. The whole specification block is rejected; the
// owning element renders without attributes.
type SyntaxError struct {
	Token  string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("attribute specification: %s in %q", e.Reason, e.Token)
	}
	return fmt.Sprintf("attribute specification: unrecognized token %q", e.Token)
}

type attribute struct {
	name    string
	value   string
	boolean bool
}

// Specification is a parsed attribute specification. Attributes keep
// first-appearance order; repeated names keep their original position
// with the latest value, except class, whose values accumulate with
// duplicates collapsed.
type Specification struct {
	attrs   []attribute
	omitted map[string]struct{}
}

// New returns an empty Specification, for callers that assemble
// attributes programmatically rather than from source text.
func New() *Specification {
	return &Specification{omitted: make(map[string]struct{})}
}

// Parse parses the text between a specification's delimiters. It is a
// pure function: identical input always yields a structurally equal
// result. Any unrecognised token shape is a SyntaxError.
func Parse(text string) (*Specification, error) {
	spec := New()
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	for _, token := range tokens {
		if err := spec.apply(token); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

// Build is the one-shot form used by replacement rules: parse text and
// render the attribute sequence, resolving placeholder tokens in values
// through resolve before escaping.
func Build(text string, resolve func(string) string) (string, error) {
	spec, err := Parse(text)
	if err != nil {
		return "", err
	}
	return spec.Sequence(resolve), nil
}

// Set assigns value to name. A name previously assigned keeps its
// position; a name previously omitted is reinstated at the end.
// Class values accumulate with first-seen deduplication.
func (s *Specification) Set(name, value string) {
	delete(s.omitted, name)
	if name == "class" {
		s.addClasses(value)
		return
	}
	for i := range s.attrs {
		if s.attrs[i].name == name {
			s.attrs[i].value = value
			s.attrs[i].boolean = false
			return
		}
	}
	s.attrs = append(s.attrs, attribute{name: name, value: value})
}

// SetBoolean records name as a valueless boolean attribute.
func (s *Specification) SetBoolean(name string) {
	delete(s.omitted, name)
	for i := range s.attrs {
		if s.attrs[i].name == name {
			s.attrs[i].boolean = true
			s.attrs[i].value = ""
			return
		}
	}
	s.attrs = append(s.attrs, attribute{name: name, boolean: true})
}

// Omit removes name from the specification and marks it omitted,
// overriding any default a caller would otherwise supply.
func (s *Specification) Omit(name string) {
	s.omitted[name] = struct{}{}
	for i := range s.attrs {
		if s.attrs[i].name == name {
			s.attrs = append(s.attrs[:i], s.attrs[i+1:]...)
			return
		}
	}
}

// IsOmitted reports whether name was explicitly marked for omission.
func (s *Specification) IsOmitted(name string) bool {
	_, ok := s.omitted[name]
	return ok
}

// Get returns the current value of name.
func (s *Specification) Get(name string) (string, bool) {
	for i := range s.attrs {
		if s.attrs[i].name == name {
			return s.attrs[i].value, true
		}
	}
	return "", false
}

// Sequence renders the attributes as ` name="value"` pairs in
// first-appearance order. Values pass through resolve (placeholder
// resolution) and are then HTML-escaped; boolean attributes render as
// the bare name. resolve may be nil.
func (s *Specification) Sequence(resolve func(string) string) string {
	var b strings.Builder
	for _, a := range s.attrs {
		if a.boolean {
			b.WriteByte(' ')
			b.WriteString(a.name)
			continue
		}
		value := a.value
		if resolve != nil {
			value = resolve(value)
		}
		fmt.Fprintf(&b, ` %s="%s"`, a.name, EscapeValue(value))
	}
	return b.String()
}

func (s *Specification) addClasses(value string) {
	existing, _ := s.Get("class")
	seen := make(map[string]struct{})
	for _, class := range strings.Fields(existing) {
		seen[class] = struct{}{}
	}
	joined := existing
	for _, class := range strings.Fields(value) {
		if _, ok := seen[class]; ok {
			continue
		}
		seen[class] = struct{}{}
		if joined == "" {
			joined = class
		} else {
			joined += " " + class
		}
	}
	for i := range s.attrs {
		if s.attrs[i].name == "class" {
			s.attrs[i].value = joined
			return
		}
	}
	s.attrs = append(s.attrs, attribute{name: "class", value: joined})
}

// apply classifies one token and folds it into the specification.
func (s *Specification) apply(token string) error {
	if eq := strings.IndexByte(token, '='); eq >= 0 {
		return s.applyNameValue(token, eq)
	}

	rest := token[1:]
	switch token[0] {
	case '#':
		if rest == "" || strings.ContainsAny(rest, `"'`) {
			return &SyntaxError{Token: token, Reason: "invalid id"}
		}
		s.Set("id", rest)
		return nil
	case '.':
		if rest == "" || strings.ContainsAny(rest, `"'`) {
			return &SyntaxError{Token: token, Reason: "invalid class"}
		}
		s.addClasses(rest)
		return nil
	case '-':
		if rest == "" {
			return &SyntaxError{Token: token, Reason: "missing attribute name"}
		}
		s.Omit(rest)
		return nil
	case 'r', 'c', 'w', 'h':
		if rest != "" && allDigits(rest) {
			s.Set(attributeNameFromAbbreviation[token[:1]], rest)
			return nil
		}
	}

	if !isValidName(token) {
		return &SyntaxError{Token: token}
	}
	s.SetBoolean(token)
	return nil
}

func (s *Specification) applyNameValue(token string, eq int) error {
	name := token[:eq]
	if abbreviated, ok := attributeNameFromAbbreviation[name]; ok {
		name = abbreviated
	}
	if !isValidName(name) {
		return &SyntaxError{Token: token, Reason: "invalid attribute name"}
	}

	raw := token[eq+1:]
	switch {
	case len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\''):
		value, err := unquote(raw)
		if err != nil {
			return &SyntaxError{Token: token, Reason: err.Error()}
		}
		s.Set(name, value)
	case raw == omitValue:
		s.Omit(name)
	case raw == emptyValue:
		s.Set(name, "")
	default:
		s.Set(name, raw)
	}
	return nil
}

// tokenize splits the specification text on whitespace, keeping quoted
// attribute values intact. Quoted values admit backslash escapes for
// the quote character and for the backslash itself.
func tokenize(text string) ([]string, error) {
	var tokens []string
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		start := i
		var quote rune
		for i < len(runes) {
			r := runes[i]
			if quote == 0 {
				if unicode.IsSpace(r) {
					break
				}
				if (r == '"' || r == '\'') && i > start && runes[i-1] == '=' {
					quote = r
				}
				i++
				continue
			}
			if r == '\\' && i+1 < len(runes) {
				i += 2
				continue
			}
			if r == quote {
				quote = 0
			}
			i++
		}
		if quote != 0 {
			return nil, &SyntaxError{Token: string(runes[start:i]), Reason: "unterminated quoted value"}
		}
		tokens = append(tokens, string(runes[start:i]))
	}
	return tokens, nil
}

// unquote strips the delimiting quotes from raw and processes backslash
// escapes of the quote character and the backslash.
func unquote(raw string) (string, error) {
	quote := raw[0]
	if len(raw) < 2 || raw[len(raw)-1] != quote {
		return "", fmt.Errorf("unterminated quoted value")
	}
	body := raw[1 : len(raw)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) && (body[i+1] == quote || body[i+1] == '\\') {
			i++
			c = body[i]
		} else if c == quote {
			return "", fmt.Errorf("unescaped quote inside value")
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == ':' || c == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// entityPattern recognises character references so EscapeValue leaves
// them intact. Entity names are assumed to be runs of up to 31 letters;
// decimal references up to 7 digits and hexadecimal up to 6.
var entityPattern = regexp.MustCompile(
	`&(?:[a-zA-Z]{1,31}|#(?:[0-9]{1,7}|[xX][0-9a-fA-F]{1,6}));|&`,
)

// EscapeValue escapes a value that will be delimited by double quotes.
// Existing character references are preserved rather than double-escaped.
func EscapeValue(value string) string {
	value = entityPattern.ReplaceAllStringFunc(value, func(m string) string {
		if m == "&" {
			return "&amp;"
		}
		return m
	})
	value = strings.ReplaceAll(value, "<", "&lt;")
	value = strings.ReplaceAll(value, ">", "&gt;")
	value = strings.ReplaceAll(value, `"`, "&quot;")
	return value
}
