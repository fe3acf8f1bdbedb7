package convert

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// PartitioningRule consumes everything from a starting pattern up to
// but not including the next ending pattern, or the end of input.
// List items and table cells are partitioning rules.
type PartitioningRule struct {
	ruleBase
	startingPattern            string
	hasAttributeSpecifications bool
	attributeSpecifications    string
	contentReplacements        []Rule
	endingPattern              string
	hasEndingPattern           bool
	tagName                    string
	concludingReplacements     []Rule

	pattern *regexp2.Regexp
}

func (r *PartitioningRule) commit() error {
	if r.startingPattern == "" {
		return fmt.Errorf("missing attribute `starting_pattern`")
	}

	anchoring := blockAnchoringPattern(true, false)

	attributeSpecificationsOrWhitespace := `[\s]+?`
	if r.hasAttributeSpecifications {
		attributeSpecificationsOrWhitespace =
			`(?: ` + attributeSpecificationsGroup(true, false, false) + ` | [\s]+? )`
	}

	endingLookahead := `(?= \z )`
	if r.hasEndingPattern {
		noCaptureOrWhitespace := `[\s]+`
		if r.hasAttributeSpecifications {
			noCaptureOrWhitespace = `(?: ` + attributeSpecificationsGroup(false, false, false) + ` | [\s]+ )`
		}
		endingLookahead = `(?= ` + anchoring + ` (?: ` + r.endingPattern + ` ) ` + noCaptureOrWhitespace + ` | \z )`
	}

	pattern := strings.Join([]string{
		anchoring,
		`(?: ` + r.startingPattern + ` )`,
		attributeSpecificationsOrWhitespace,
		contentGroup("content", "", "", false),
		endingLookahead,
	}, " ")

	compiled, err := compileRulePattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *PartitioningRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		attributesSequence := ""
		if r.hasAttributeSpecifications {
			combined := r.attributeSpecifications + " " + groupValue(m, "attribute_specifications")
			attributesSequence = r.env.attributesSequence(combined)
		}

		content, err := applyAll(r.contentReplacements, groupValue(m, "content"), nil)
		if err != nil {
			return "", err
		}

		substitute := content
		if r.tagName != "" {
			substitute = "<" + r.tagName + attributesSequence + ">" + content + "</" + r.tagName + ">\n"
		}
		return applyAll(r.concludingReplacements, substitute, nil)
	})
}
