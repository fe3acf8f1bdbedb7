package convert

import (
	"fmt"
	"sort"
)

// RuleInfo describes one committed rule of a cascade.
type RuleInfo struct {
	ID         string
	Class      string
	Queued     bool
	QueueIndex int
}

// ListRules legislates the standard rules followed by the rules region
// of the given CMD source and reports the resulting cascade: queued
// rules first in application order, then unqueued rules sorted by id.
// Diagnostics from spoiled declarations are returned alongside.
func ListRules(source, filePath string, opts ...Option) ([]RuleInfo, []Diagnostic, error) {
	o := options{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&o)
	}

	rules, _ := ExtractRulesAndContent(source)

	env := newEnvironment(o.logger, o.verbose, o.maxIterations)
	authority := newAuthority(env, CMDName(filePath), o.includer)

	if err := authority.Legislate(standardRules, "STANDARD_RULES"); err != nil {
		return nil, env.diagnostics, fmt.Errorf("standard rules: %w", err)
	}
	if err := registerProperties(env, authority.Registry(), o.properties); err != nil {
		return nil, env.diagnostics, err
	}
	if err := authority.Legislate(rules, filePath); err != nil {
		return nil, env.diagnostics, err
	}

	reg := authority.Registry()
	infos := make([]RuleInfo, 0, len(reg.byID))
	queued := make(map[string]bool, len(reg.queue))
	for i, rule := range reg.queue {
		queued[rule.ID()] = true
		infos = append(infos, RuleInfo{
			ID:         rule.ID(),
			Class:      className(rule),
			Queued:     true,
			QueueIndex: i,
		})
	}

	unqueued := make([]RuleInfo, 0, len(reg.byID)-len(reg.queue))
	for id, rule := range reg.byID {
		if queued[id] {
			continue
		}
		unqueued = append(unqueued, RuleInfo{
			ID:         id,
			Class:      className(rule),
			QueueIndex: -1,
		})
	}
	sort.Slice(unqueued, func(i, j int) bool { return unqueued[i].ID < unqueued[j].ID })

	return append(infos, unqueued...), env.diagnostics, nil
}

// className reports the declaration class of a rule, inverting the
// mapping applied when the class declaration was parsed.
func className(rule Rule) string {
	switch rule.(type) {
	case *SequenceRule:
		return "ReplacementSequence"
	case *PlaceholderMarkerRule:
		return "PlaceholderMarkerReplacement"
	case *PlaceholderProtectRule:
		return "PlaceholderProtectionReplacement"
	case *PlaceholderUnprotectRule:
		return "PlaceholderUnprotectionReplacement"
	case *DeIndentRule:
		return "DeIndentationReplacement"
	case *OrdinaryDictionaryRule:
		return "OrdinaryDictionaryReplacement"
	case *RegexDictionaryRule:
		return "RegexDictionaryReplacement"
	case *FixedDelimitersRule:
		return "FixedDelimitersReplacement"
	case *ExtensibleFenceRule:
		return "ExtensibleFenceReplacement"
	case *PartitioningRule:
		return "PartitioningReplacement"
	case *InlineAssortedDelimitersRule:
		return "InlineAssortedDelimitersReplacement"
	case *HeadingRule:
		return "HeadingReplacement"
	case *ReferenceDefinitionRule:
		return "ReferenceDefinitionReplacement"
	case *SpecifiedImageRule:
		return "SpecifiedImageReplacement"
	case *ReferencedImageRule:
		return "ReferencedImageReplacement"
	case *ExplicitLinkRule:
		return "ExplicitLinkReplacement"
	case *SpecifiedLinkRule:
		return "SpecifiedLinkReplacement"
	case *ReferencedLinkRule:
		return "ReferencedLinkReplacement"
	}
	return "unknown"
}
