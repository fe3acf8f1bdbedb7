package convert

import (
	"strings"

	"github.com/dlclark/regexp2"
)

func bracketedContent(name, prohibited string) string {
	return `\[ [\s]* ` + contentGroup(name, `[^\]]`, prohibited, false) + ` [\s]* \]`
}

func optionalAttributeSpecificationsGroup(has bool) string {
	if !has {
		return ""
	}
	return attributeSpecificationsGroup(true, true, false)
}

// ReferenceDefinitionRule consumes reference definitions, storing them
// for later referenced images and links. Definitions render as nothing.
type ReferenceDefinitionRule struct {
	ruleBase
	hasAttributeSpecifications bool
	attributeSpecifications    string

	pattern *regexp2.Regexp
}

func (r *ReferenceDefinitionRule) commit() error {
	pattern := strings.Join([]string{
		blockAnchoringPattern(true, true),
		`\[ [\s]* ` + group("label", ` [^\]]*? `) + ` [\s]* \]`,
		optionalAttributeSpecificationsGroup(r.hasAttributeSpecifications),
		`[:]`,
		hangingWhitespacePattern(),
		uriPattern(true),
		`(?: ` + hangingWhitespacePattern() + ` ` + titlePattern() + ` )?`,
		`[^\S\n]* $`,
	}, " ")

	compiled, err := compileRulePattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *ReferenceDefinitionRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		combined := ""
		if r.hasAttributeSpecifications {
			combined = r.attributeSpecifications + " " + groupValue(m, "attribute_specifications")
		}
		title, hasTitle := titleFromMatch(m)
		r.env.refs.Store(groupValue(m, "label"), combined, uriFromMatch(m), title, hasTitle)
		return "", nil
	})
}

// SpecifiedImageRule converts images whose source is given inline.
type SpecifiedImageRule struct {
	ruleBase
	hasAttributeSpecifications bool
	attributeSpecifications    string
	prohibitedContent          string

	pattern *regexp2.Regexp
}

func (r *SpecifiedImageRule) commit() error {
	pattern := strings.Join([]string{
		`[!]`,
		bracketedContent("alt_text", r.prohibitedContent),
		optionalAttributeSpecificationsGroup(r.hasAttributeSpecifications),
		`\(`,
		`(?: [\s]* ` + uriPattern(false) + ` )?`,
		`(?: [\s]* ` + titlePattern() + ` )?`,
		`[\s]*`,
		`\)`,
	}, " ")

	compiled, err := compileSpanPattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *SpecifiedImageRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		specifications := []string{
			"alt=" + r.env.store.Protect(groupValue(m, "alt_text")),
			"src=" + r.env.store.Protect(uriFromMatch(m)),
		}
		if title, hasTitle := titleFromMatch(m); hasTitle {
			specifications = append(specifications, "title="+r.env.store.Protect(title))
		}
		if r.hasAttributeSpecifications {
			specifications = append(specifications,
				r.attributeSpecifications, groupValue(m, "attribute_specifications"))
		}
		attributesSequence := r.env.attributesSequence(strings.Join(specifications, " "))
		return "<img" + attributesSequence + ">", nil
	})
}

// ReferencedImageRule converts images whose source comes from a
// reference definition. An unrecognised label leaves the text as is.
type ReferencedImageRule struct {
	ruleBase
	hasAttributeSpecifications bool
	attributeSpecifications    string
	prohibitedContent          string

	pattern *regexp2.Regexp
}

func (r *ReferencedImageRule) commit() error {
	pattern := strings.Join([]string{
		`[!]`,
		bracketedContent("alt_text", r.prohibitedContent),
		optionalAttributeSpecificationsGroup(r.hasAttributeSpecifications),
		`(?: ` + bracketedContent("label", r.prohibitedContent) + ` )?`,
	}, " ")

	compiled, err := compileSpanPattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *ReferencedImageRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		alt := groupValue(m, "alt_text")
		label := groupValue(m, "label")
		if label == "" {
			label = alt
		}
		definition, ok := r.env.refs.Load(label)
		if !ok {
			return m.String(), nil
		}

		specifications := []string{
			"alt=" + r.env.store.Protect(alt),
			"src=" + r.env.store.Protect(definition.uri),
		}
		if definition.hasTitle {
			specifications = append(specifications, "title="+r.env.store.Protect(definition.title))
		}
		specifications = append(specifications, definition.attributeSpecifications)
		if r.hasAttributeSpecifications {
			specifications = append(specifications,
				r.attributeSpecifications, groupValue(m, "attribute_specifications"))
		}
		attributesSequence := r.env.attributesSequence(strings.Join(specifications, " "))
		return "<img" + attributesSequence + ">", nil
	})
}

// ExplicitLinkRule converts angle-bracketed URIs into links whose text
// is the URI itself.
type ExplicitLinkRule struct {
	ruleBase
	flags                      allowedFlags
	hasAttributeSpecifications bool
	attributeSpecifications    string
	contentReplacements        []Rule
	concludingReplacements     []Rule

	pattern *regexp2.Regexp
}

func (r *ExplicitLinkRule) commit() error {
	pattern := strings.Join([]string{
		flagsGroup(r.flags.letters()),
		`[<]`,
		optionalAttributeSpecificationsGroup(r.hasAttributeSpecifications),
		group("uri", ` [a-zA-Z.+-]+ [:] [^\s>]*? `),
		`[>]`,
	}, " ")

	compiled, err := compileSpanPattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *ExplicitLinkRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		enabled := r.flags.enabledBy(m)
		href := groupValue(m, "uri")

		specifications := []string{"href=" + r.env.store.Protect(href)}
		if r.hasAttributeSpecifications {
			specifications = append(specifications, groupValue(m, "attribute_specifications"))
		}
		attributesSequence := r.env.attributesSequence(strings.Join(specifications, " "))

		content, err := applyAll(r.contentReplacements, href, enabled)
		if err != nil {
			return "", err
		}
		substitute := "<a" + attributesSequence + ">" + content + "</a>"
		return applyAll(r.concludingReplacements, substitute, enabled)
	})
}

// SpecifiedLinkRule converts links whose destination is given inline.
type SpecifiedLinkRule struct {
	ruleBase
	hasAttributeSpecifications bool
	attributeSpecifications    string
	prohibitedContent          string

	pattern *regexp2.Regexp
}

func (r *SpecifiedLinkRule) commit() error {
	pattern := strings.Join([]string{
		bracketedContent("link_text", r.prohibitedContent),
		optionalAttributeSpecificationsGroup(r.hasAttributeSpecifications),
		`\(`,
		`(?: [\s]* ` + uriPattern(false) + ` )?`,
		`(?: [\s]* ` + titlePattern() + ` )?`,
		`[\s]*`,
		`\)`,
	}, " ")

	compiled, err := compileSpanPattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *SpecifiedLinkRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		var specifications []string
		if groupPresent(m, "angle_bracketed_uri") || groupPresent(m, "bare_uri") {
			specifications = append(specifications, "href="+r.env.store.Protect(uriFromMatch(m)))
		}
		if title, hasTitle := titleFromMatch(m); hasTitle {
			specifications = append(specifications, "title="+r.env.store.Protect(title))
		}
		if r.hasAttributeSpecifications {
			specifications = append(specifications,
				r.attributeSpecifications, groupValue(m, "attribute_specifications"))
		}
		attributesSequence := r.env.attributesSequence(strings.Join(specifications, " "))
		return "<a" + attributesSequence + ">" + groupValue(m, "link_text") + "</a>", nil
	})
}

// ReferencedLinkRule converts links whose destination comes from a
// reference definition. An unrecognised label leaves the text as is.
type ReferencedLinkRule struct {
	ruleBase
	hasAttributeSpecifications bool
	attributeSpecifications    string
	prohibitedContent          string

	pattern *regexp2.Regexp
}

func (r *ReferencedLinkRule) commit() error {
	pattern := strings.Join([]string{
		bracketedContent("link_text", r.prohibitedContent),
		optionalAttributeSpecificationsGroup(r.hasAttributeSpecifications),
		`(?: ` + bracketedContent("label", r.prohibitedContent) + ` )?`,
	}, " ")

	compiled, err := compileSpanPattern(pattern)
	if err != nil {
		return err
	}
	r.pattern = compiled
	return nil
}

func (r *ReferencedLinkRule) Apply(text string, flags FlagSet) (string, error) {
	if r.skip(flags) {
		return text, nil
	}
	return replaceAll(r.pattern, text, -1, func(m *regexp2.Match) (string, error) {
		content := groupValue(m, "link_text")
		label := groupValue(m, "label")
		if label == "" {
			label = content
		}
		definition, ok := r.env.refs.Load(label)
		if !ok {
			return m.String(), nil
		}

		specifications := []string{"href=" + r.env.store.Protect(definition.uri)}
		if definition.hasTitle {
			specifications = append(specifications, "title="+r.env.store.Protect(definition.title))
		}
		specifications = append(specifications, definition.attributeSpecifications)
		if r.hasAttributeSpecifications {
			specifications = append(specifications,
				r.attributeSpecifications, groupValue(m, "attribute_specifications"))
		}
		attributesSequence := r.env.attributesSequence(strings.Join(specifications, " "))
		return "<a" + attributesSequence + ">" + content + "</a>", nil
	})
}
