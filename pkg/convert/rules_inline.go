package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

// InlineAssortedDelimitersRule converts inline delimiters, single or
// doubled, into their tags. Matching repeats until no delimiter pair
// remains, and content is converted recursively, so delimiters nest.
type InlineAssortedDelimitersRule struct {
	ruleBase
	tagNameByLength            map[string]map[int]string
	hasAttributeSpecifications bool
	attributeSpecifications    string
	prohibitedContent          string

	pattern *regexp2.Regexp
}

func (r *InlineAssortedDelimitersRule) commit() error {
	if len(r.tagNameByLength) == 0 {
		return fmt.Errorf("missing attribute `delimiter_conversion`")
	}

	var singles, eithers, doubles []string
	for character, byLength := range r.tagNameByLength {
		_, hasSingle := byLength[1]
		_, hasDouble := byLength[2]
		switch {
		case hasSingle && hasDouble:
			eithers = append(eithers, character)
		case hasSingle:
			singles = append(singles, character)
		case hasDouble:
			doubles = append(doubles, character)
		}
	}

	var alternatives []string
	for _, class := range []struct {
		name       string
		characters []string
	}{
		{"double", doubles},
		{"either", eithers},
		{"single", singles},
	} {
		if len(class.characters) == 0 {
			continue
		}
		sort.Strings(class.characters)
		alternatives = append(alternatives,
			capturedCharacterClass(class.name, characterClassBody(class.characters)))
	}
	delimiterCharacter := group("delimiter_character", " "+strings.Join(alternatives, " | ")+" ")

	repetition := ""
	switch {
	case len(eithers) > 0 && len(doubles) > 0:
		repetition = `(?(double) \k<double> | (?(either) \k<either>? ) )`
	case len(eithers) > 0:
		repetition = `(?(either) \k<either>? )`
	case len(doubles) > 0:
		repetition = `(?(double) \k<double> )`
	}

	prohibited := `\k<delimiter_character>`
	if r.prohibitedContent != "" {
		prohibited += ` | ` + r.prohibitedContent
	}

	attributeSpecifications := ""
	if r.hasAttributeSpecifications {
		attributeSpecifications = attributeSpecificationsGroup(true, true, false)
	}

	pattern := strings.Join([]string{
		`[|]?`,
		group("delimiter", " "+delimiterCharacter+" "+repetition+" "),
		`(?! [\s] | [<][/] )`,
		attributeSpecifications,
		`[\s]*`,
		contentGroup("content", "", prohibited, true),
		`(?<! [\s] | [|] )`,
		`\k<delimiter>`,
	}, " ")

	compiled, err := compileRulePattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

// characterClassBody escapes characters for use inside a character
// class.
func characterClassBody(characters []string) string {
	var builder strings.Builder
	for _, character := range characters {
		switch character {
		case `]`, `\`, `^`, `-`:
			builder.WriteByte('\\')
		}
		builder.WriteString(character)
	}
	return builder.String()
}

func (r *InlineAssortedDelimitersRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return r.applyUntilSettled(text)
}

// applyUntilSettled repeats substitution until the text stops changing,
// since an outer pair only becomes matchable once its inner pairs have
// been converted.
func (r *InlineAssortedDelimitersRule) applyUntilSettled(text string) (string, error) {
	for iteration := 0; ; iteration++ {
		if iteration >= r.env.maxIterations {
			return text, fmt.Errorf("rule #%s: %w", r.id, ErrIterationBound)
		}
		next, err := replaceAll(r.pattern, text, -1, r.substitute)
		if err != nil {
			return text, err
		}
		if next == text {
			return text, nil
		}
		text = next
	}
}

func (r *InlineAssortedDelimitersRule) substitute(m *regexp2.Match) (string, error) {
	character := groupValue(m, "delimiter_character")
	length := len([]rune(groupValue(m, "delimiter")))
	tagName := r.tagNameByLength[character][length]

	attributesSequence := ""
	if r.hasAttributeSpecifications {
		combined := r.attributeSpecifications + " " + groupValue(m, "attribute_specifications")
		attributesSequence = r.env.attributesSequence(combined)
	}

	content, err := r.applyUntilSettled(groupValue(m, "content"))
	if err != nil {
		return "", err
	}
	return "<" + tagName + attributesSequence + ">" + content + "</" + tagName + ">", nil
}
