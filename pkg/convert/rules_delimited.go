package convert

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// allowedFlag pairs a single-letter marker with the flag name it
// enables when matched before the opening delimiter.
type allowedFlag struct {
	letter string
	name   string
}

type allowedFlags []allowedFlag

func (f allowedFlags) letters() []string {
	letters := make([]string, 0, len(f))
	for _, flag := range f {
		letters = append(letters, flag.letter)
	}
	return letters
}

// enabledBy maps matched flag letters to a flag set. The set is always
// non-nil so nested replacements see a flag context even when no
// letters matched.
func (f allowedFlags) enabledBy(m *regexp2.Match) FlagSet {
	enabled := FlagSet{}
	for _, r := range groupValue(m, "flags") {
		letter := string(r)
		for _, flag := range f {
			if flag.letter == letter {
				enabled[flag.name] = struct{}{}
			}
		}
	}
	return enabled
}

// delimitedSubstitute renders the matched construct: combine attribute
// specifications, run content replacements under the matched flags,
// wrap in the tag if any, then run concluding replacements.
func delimitedSubstitute(env *environment, m *regexp2.Match, enabled FlagSet,
	hasAttributeSpecifications bool, ruleAttributeSpecifications, tagName string,
	contentReplacements, concludingReplacements []Rule) (string, error) {
	attributesSequence := ""
	if hasAttributeSpecifications {
		combined := ruleAttributeSpecifications + " " + groupValue(m, "attribute_specifications")
		attributesSequence = env.attributesSequence(combined)
	}

	content, err := applyAll(contentReplacements, groupValue(m, "content"), enabled)
	if err != nil {
		return "", err
	}

	substitute := content
	if tagName != "" {
		substitute = "<" + tagName + attributesSequence + ">" + content + "</" + tagName + ">"
	}
	return applyAll(concludingReplacements, substitute, enabled)
}

// FixedDelimitersRule matches content between a literal opening and
// closing delimiter pair.
type FixedDelimitersRule struct {
	ruleBase
	syntaxIsBlock              bool
	hasSyntaxType              bool
	flags                      allowedFlags
	openingDelimiter           string
	closingDelimiter           string
	hasAttributeSpecifications bool
	attributeSpecifications    string
	prohibitedContent          string
	contentReplacements        []Rule
	tagName                    string
	concludingReplacements     []Rule

	pattern *regexp2.Regexp
}

func (r *FixedDelimitersRule) commit() error {
	if !r.hasSyntaxType {
		return fmt.Errorf("missing attribute `syntax_type`")
	}
	if r.openingDelimiter == "" {
		return fmt.Errorf("missing attribute `opening_delimiter`")
	}
	if r.closingDelimiter == "" {
		return fmt.Errorf("missing attribute `closing_delimiter`")
	}

	anchoring := blockAnchoringPattern(r.syntaxIsBlock, false)
	pattern := strings.Join([]string{
		anchoring,
		flagsGroup(r.flags.letters()),
		escapeLiteral(r.openingDelimiter),
		r.attributeSpecificationsPattern(),
		contentGroup("content", "", r.prohibitedContent, false),
		anchoring,
		escapeLiteral(r.closingDelimiter),
	}, " ")

	compiled, err := compileRulePattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *FixedDelimitersRule) attributeSpecificationsPattern() string {
	if !r.hasAttributeSpecifications {
		if r.syntaxIsBlock {
			return `\n`
		}
		return ""
	}
	return attributeSpecificationsGroup(true, true, r.syntaxIsBlock)
}

func (r *FixedDelimitersRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		return delimitedSubstitute(r.env, m, r.flags.enabledBy(m),
			r.hasAttributeSpecifications, r.attributeSpecifications, r.tagName,
			r.contentReplacements, r.concludingReplacements)
	})
}

// ExtensibleFenceRule matches content between fences of a repeated
// delimiter character, where the closing fence must repeat the opening
// fence exactly.
type ExtensibleFenceRule struct {
	ruleBase
	syntaxIsBlock              bool
	hasSyntaxType              bool
	flags                      allowedFlags
	prologueDelimiter          string
	delimiterCharacter         string
	delimiterMinCount          int
	hasAttributeSpecifications bool
	attributeSpecifications    string
	prohibitedContent          string
	contentReplacements        []Rule
	epilogueDelimiter          string
	tagName                    string
	concludingReplacements     []Rule

	pattern *regexp2.Regexp
}

func (r *ExtensibleFenceRule) commit() error {
	if !r.hasSyntaxType {
		return fmt.Errorf("missing attribute `syntax_type`")
	}
	if r.delimiterCharacter == "" {
		return fmt.Errorf("missing attribute `extensible_delimiter`")
	}

	anchoring := blockAnchoringPattern(r.syntaxIsBlock, false)
	opening := group("extensible_delimiter",
		fmt.Sprintf(" %s{%d,} ", escapeLiteral(r.delimiterCharacter), r.delimiterMinCount))
	pattern := strings.Join([]string{
		anchoring,
		flagsGroup(r.flags.letters()),
		escapeLiteral(r.prologueDelimiter),
		opening,
		r.attributeSpecificationsPattern(),
		contentGroup("content", "", r.prohibitedContent, false),
		anchoring,
		`\k<extensible_delimiter>`,
		escapeLiteral(r.epilogueDelimiter),
	}, " ")

	compiled, err := compileRulePattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *ExtensibleFenceRule) attributeSpecificationsPattern() string {
	if !r.hasAttributeSpecifications {
		if r.syntaxIsBlock {
			return `\n`
		}
		return ""
	}
	return attributeSpecificationsGroup(true, true, r.syntaxIsBlock)
}

func (r *ExtensibleFenceRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		return delimitedSubstitute(r.env, m, r.flags.enabledBy(m),
			r.hasAttributeSpecifications, r.attributeSpecifications, r.tagName,
			r.contentReplacements, r.concludingReplacements)
	})
}
