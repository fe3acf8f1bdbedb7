package convert

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// HeadingRule converts hash headings, with continuation lines hanging
// under the opening hashes.
type HeadingRule struct {
	ruleBase
	hasAttributeSpecifications bool
	attributeSpecifications    string

	pattern *regexp2.Regexp
}

func (r *HeadingRule) commit() error {
	attributeSpecifications := ""
	if r.hasAttributeSpecifications {
		attributeSpecifications = attributeSpecificationsGroup(true, true, false)
	}

	pattern := strings.Join([]string{
		blockAnchoringPattern(true, true),
		group("opening_hashes", ` [#]{1,6} `),
		attributeSpecifications,
		`(?: [^\S\n]+ ` + group("content_starter", ` [^\n]*? `) + ` )? [^\S\n]*`,
		group("content_continuation", ` (?: \n \k<anchoring_whitespace> [^\S\n]+ [^\n]* )* `),
		`[#]* [^\S\n]* $`,
	}, " ")

	compiled, err := compileRulePattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *HeadingRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		level := len(groupValue(m, "opening_hashes"))
		tagName := fmt.Sprintf("h%d", level)

		attributesSequence := ""
		if r.hasAttributeSpecifications {
			combined := r.attributeSpecifications + " " + groupValue(m, "attribute_specifications")
			attributesSequence = r.env.attributesSequence(combined)
		}

		content := groupValue(m, "content_starter") + groupValue(m, "content_continuation")
		return "<" + tagName + attributesSequence + ">" + content + "</" + tagName + ">", nil
	})
}
