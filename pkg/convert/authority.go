package convert

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// Includer loads an included rules file by name, returning its text.
type Includer func(name string) (string, error)

// Authority parses replacement rule syntax and builds the registry.
//
// Terminology: class declarations open a rule; attribute and
// substitution declarations are staged against it; a blank line, an
// inclusion, another class declaration, or end of file commits it.
//
// A malformed declaration spoils only the rule being declared: the
// error is recorded as a diagnostic, the rule is dropped, and parsing
// continues. Redeclaring an id with a different rule class, or
// declaring a second root rule, corrupts the registry and is fatal.
type Authority struct {
	env         *environment
	registry    *Registry
	includer    Includer
	cmdName     string
	openedFiles []string
}

func newAuthority(env *environment, cmdName string, includer Includer) *Authority {
	return &Authority{
		env:      env,
		registry: newRegistry(),
		includer: includer,
		cmdName:  cmdName,
	}
}

// pendingRule is a rule mid-declaration.
type pendingRule struct {
	className string
	rule      Rule
	spoiled   bool
}

// stagedDeclaration is an attribute or substitution declaration whose
// lines have been read but not yet parsed.
type stagedDeclaration struct {
	attributeName   string
	attributeValue  string
	hasAttribute    bool
	substitution    string
	hasSubstitution bool
	startLine       int
}

var (
	classDeclarationPattern      = regexp.MustCompile(`^([A-Za-z]+):[\s]+#([a-z0-9.-]+)$`)
	attributeDeclarationPattern  = regexp.MustCompile(`^- ([a-z_]+):(.*)$`)
	allowedFlagPattern           = regexp.MustCompile(`^([a-z])=([A-Z_]+)$`)
	ruleReferencePattern         = regexp.MustCompile(`^#([a-z0-9.-]+)$`)
	flagNamePattern              = regexp.MustCompile(`^[A-Z_]+$`)
	tagNamePattern               = regexp.MustCompile(`^[a-z0-9]+$`)
	substitutionDelimiterPattern = regexp.MustCompile(`-{2,}>`)
)

// Legislate parses rules text from the named file, committing rules
// into the registry. Inclusions are resolved through the includer.
func (a *Authority) Legislate(rules, fileName string) error {
	if len(a.openedFiles) == 0 {
		a.openedFiles = append(a.openedFiles, filepath.Clean(fileName))
	}

	var pending *pendingRule
	var staged *stagedDeclaration
	lineNumber := 0

	flush := func() error {
		if staged != nil {
			a.stage(pending, staged, fileName, lineNumber)
			staged = nil
		}
		if pending != nil {
			err := a.commitPending(pending, fileName, lineNumber)
			pending = nil
			return err
		}
		return nil
	}

	lines := strings.Split(rules, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, line := range lines {
		lineNumber = i + 1

		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		if includedName, ok := matchInclusion(line); ok {
			if err := flush(); err != nil {
				return err
			}
			if err := a.include(includedName, fileName, lineNumber); err != nil {
				return err
			}
			continue
		}

		if m := classDeclarationPattern.FindStringSubmatch(line); m != nil {
			if err := flush(); err != nil {
				return err
			}
			rule, err := a.newRule(m[1], m[2])
			if err != nil {
				return fmt.Errorf("%s, line %d: %w", fileName, lineNumber, err)
			}
			pending = &pendingRule{className: m[1], rule: rule}
			continue
		}

		if m := attributeDeclarationPattern.FindStringSubmatch(line); m != nil {
			if staged != nil {
				a.stage(pending, staged, fileName, lineNumber)
				staged = nil
			}
			if pending == nil {
				a.env.diagf(fileName, lineNumber, 0,
					"attribute declaration without an active class declaration")
				continue
			}
			staged = &stagedDeclaration{
				attributeName:  m[1],
				attributeValue: m[2],
				hasAttribute:   true,
				startLine:      lineNumber,
			}
			continue
		}

		if strings.HasPrefix(line, "* ") {
			if staged != nil {
				a.stage(pending, staged, fileName, lineNumber)
				staged = nil
			}
			if pending == nil {
				a.env.diagf(fileName, lineNumber, 0,
					"substitution declaration without an active class declaration")
				continue
			}
			staged = &stagedDeclaration{
				substitution:    line[len("* "):],
				hasSubstitution: true,
				startLine:       lineNumber,
			}
			continue
		}

		if isContinuation(line) {
			switch {
			case staged != nil && staged.hasAttribute:
				staged.attributeValue += "\n" + line
			case staged != nil && staged.hasSubstitution:
				staged.substitution += "\n" + line
			default:
				a.env.diagf(fileName, lineNumber, 0,
					"continuation only allowed for attribute or substitution declarations")
			}
			continue
		}

		a.env.diagf(fileName, lineNumber, 0, "invalid syntax `%s`", line)
	}

	lineNumber++
	return flush()
}

// Registry returns the legislated registry.
func (a *Authority) Registry() *Registry {
	return a.registry
}

func matchInclusion(line string) (string, bool) {
	if !strings.HasPrefix(line, "< ") {
		return "", false
	}
	name := strings.TrimSpace(line[len("< "):])
	if name == "" {
		return "", false
	}
	return name, true
}

func isContinuation(line string) bool {
	return line != strings.TrimLeft(line, " \t\v\f\r") && strings.TrimSpace(line) != ""
}

func (a *Authority) include(includedName, fileName string, lineNumber int) error {
	if strings.HasPrefix(includedName, "/") {
		includedName = strings.TrimPrefix(includedName, "/")
	} else {
		includedName = filepath.Join(filepath.Dir(fileName), includedName)
	}
	includedName = filepath.Clean(includedName)

	if a.includer == nil {
		return fmt.Errorf("%s, line %d: inclusion of `%s` not supported here", fileName, lineNumber, includedName)
	}

	for _, openedName := range a.openedFiles {
		if openedName == includedName {
			chain := append(append([]string{}, a.openedFiles...), includedName)
			return fmt.Errorf("%s, line %d: recursive inclusion: `%s`",
				fileName, lineNumber, strings.Join(chain, "` includes `"))
		}
	}

	rules, err := a.includer(includedName)
	if err != nil {
		return fmt.Errorf("%s, line %d: file `%s` not found: %w", fileName, lineNumber, includedName, err)
	}

	a.openedFiles = append(a.openedFiles, includedName)
	err = a.Legislate(rules, includedName)
	a.openedFiles = a.openedFiles[:len(a.openedFiles)-1]
	return err
}

func (a *Authority) newRule(className, id string) (Rule, error) {
	b := ruleBase{env: a.env, id: id}
	switch className {
	case "ReplacementSequence":
		return &SequenceRule{ruleBase: b}, nil
	case "PlaceholderMarkerReplacement":
		return &PlaceholderMarkerRule{ruleBase: b}, nil
	case "PlaceholderProtectionReplacement":
		return &PlaceholderProtectRule{ruleBase: b}, nil
	case "PlaceholderUnprotectionReplacement":
		return &PlaceholderUnprotectRule{ruleBase: b}, nil
	case "DeIndentationReplacement":
		return &DeIndentRule{ruleBase: b}, nil
	case "OrdinaryDictionaryReplacement":
		return &OrdinaryDictionaryRule{ruleBase: b}, nil
	case "RegexDictionaryReplacement":
		return &RegexDictionaryRule{ruleBase: b}, nil
	case "FixedDelimitersReplacement":
		return &FixedDelimitersRule{ruleBase: b}, nil
	case "ExtensibleFenceReplacement":
		return &ExtensibleFenceRule{ruleBase: b, delimiterMinCount: 1}, nil
	case "PartitioningReplacement":
		return &PartitioningRule{ruleBase: b}, nil
	case "InlineAssortedDelimitersReplacement":
		return &InlineAssortedDelimitersRule{ruleBase: b}, nil
	case "HeadingReplacement":
		return &HeadingRule{ruleBase: b}, nil
	case "ReferenceDefinitionReplacement":
		return &ReferenceDefinitionRule{ruleBase: b}, nil
	case "SpecifiedImageReplacement":
		return &SpecifiedImageRule{ruleBase: b}, nil
	case "ReferencedImageReplacement":
		return &ReferencedImageRule{ruleBase: b}, nil
	case "ExplicitLinkReplacement":
		return &ExplicitLinkRule{ruleBase: b}, nil
	case "SpecifiedLinkReplacement":
		return &SpecifiedLinkRule{ruleBase: b}, nil
	case "ReferencedLinkReplacement":
		return &ReferencedLinkRule{ruleBase: b}, nil
	}
	return nil, &RegistryError{RuleID: id, Message: fmt.Sprintf("unrecognised replacement class `%s`", className)}
}

// stage parses a staged declaration into the pending rule. Errors
// spoil the rule.
func (a *Authority) stage(pending *pendingRule, staged *stagedDeclaration, fileName string, lineNumber int) {
	if pending == nil || pending.spoiled {
		return
	}

	var err error
	if staged.hasSubstitution {
		err = a.stageSubstitution(pending, staged.substitution)
	} else {
		err = a.stageAttribute(pending, staged.attributeName, staged.attributeValue)
	}
	if err != nil {
		pending.spoiled = true
		a.env.diagf(fileName, staged.startLine, lineNumber-1, "%s", err.Error())
	}
}

func (a *Authority) commitPending(pending *pendingRule, fileName string, lineNumber int) error {
	if pending.spoiled {
		return nil
	}
	if err := pending.rule.commit(); err != nil {
		a.env.diagf(fileName, lineNumber, 0, "%s for %s", err.Error(), pending.className)
		return nil
	}
	err := a.registry.register(pending.rule)
	if regErr, ok := err.(*RegistryError); ok {
		regErr.File = fileName
		regErr.Line = lineNumber
		return regErr
	}
	if err != nil {
		a.env.diagf(fileName, lineNumber, 0, "%s", err.Error())
	}
	return nil
}

// resolveRules resolves a whitespace-separated list of #id references,
// where the pending rule's own id refers to itself.
func (a *Authority) resolveRules(pending *pendingRule, attributeName, value string) ([]Rule, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil, declarationErrorf("invalid specification `` for attribute `%s`", attributeName)
	}
	if len(fields) == 1 && fields[0] == "NONE" {
		return nil, nil
	}

	rules := make([]Rule, 0, len(fields))
	for _, field := range fields {
		m := ruleReferencePattern.FindStringSubmatch(field)
		if m == nil {
			return nil, declarationErrorf("invalid specification `%s` for attribute `%s`", field, attributeName)
		}
		id := m[1]
		if id == pending.rule.ID() {
			rules = append(rules, pending.rule)
			continue
		}
		rule, ok := a.registry.lookup(id)
		if !ok {
			return nil, declarationErrorf("undefined replacement `#%s`", id)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (a *Authority) stageAttribute(pending *pendingRule, name, value string) error {
	rule := pending.rule
	trimmed := strings.TrimSpace(value)

	unrecognised := func() error {
		return declarationErrorf("unrecognised attribute `%s` for `%s`", name, pending.className)
	}
	invalidValue := func() error {
		return declarationErrorf("invalid value `%s` for attribute `%s`", trimmed, name)
	}

	switch name {
	case "queue_position":
		return a.stageQueuePosition(rule, trimmed)

	case "positive_flag", "negative_flag":
		switch rule.(type) {
		case *DeIndentRule, *OrdinaryDictionaryRule, *RegexDictionaryRule:
		default:
			return unrecognised()
		}
		if trimmed == "NONE" {
			return nil
		}
		if !flagNamePattern.MatchString(trimmed) {
			return invalidValue()
		}
		if name == "positive_flag" {
			rule.base().positiveFlag = trimmed
		} else {
			rule.base().negativeFlag = trimmed
		}
		return nil

	case "apply_mode":
		r, ok := rule.(*OrdinaryDictionaryRule)
		if !ok {
			return unrecognised()
		}
		switch trimmed {
		case "SIMULTANEOUS":
			r.applySequentially = false
		case "SEQUENTIAL":
			r.applySequentially = true
		default:
			return invalidValue()
		}
		return nil

	case "allowed_flags":
		flags, err := parseAllowedFlags(value)
		if err != nil {
			return err
		}
		switch r := rule.(type) {
		case *FixedDelimitersRule:
			r.flags = flags
		case *ExtensibleFenceRule:
			r.flags = flags
		case *ExplicitLinkRule:
			r.flags = flags
		default:
			return unrecognised()
		}
		return nil

	case "syntax_type":
		var isBlock bool
		switch trimmed {
		case "BLOCK":
			isBlock = true
		case "INLINE":
			isBlock = false
		default:
			return invalidValue()
		}
		switch r := rule.(type) {
		case *FixedDelimitersRule:
			r.syntaxIsBlock, r.hasSyntaxType = isBlock, true
		case *ExtensibleFenceRule:
			r.syntaxIsBlock, r.hasSyntaxType = isBlock, true
		default:
			return unrecognised()
		}
		return nil

	case "attribute_specifications":
		if trimmed == "" {
			return invalidValue()
		}
		specifications, has := "", true
		switch trimmed {
		case "NONE":
			has = false
		case "EMPTY":
		default:
			specifications = trimmed
		}
		switch r := rule.(type) {
		case *FixedDelimitersRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *ExtensibleFenceRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *PartitioningRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *InlineAssortedDelimitersRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *HeadingRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *ReferenceDefinitionRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *SpecifiedImageRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *ReferencedImageRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *ExplicitLinkRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *SpecifiedLinkRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		case *ReferencedLinkRule:
			r.attributeSpecifications, r.hasAttributeSpecifications = specifications, has
		default:
			return unrecognised()
		}
		return nil

	case "prohibited_content":
		var prohibited string
		switch trimmed {
		case "NONE":
		case "BLOCKS":
			prohibited = blockTagPattern(false)
		case "ANCHORED_BLOCKS":
			prohibited = blockTagPattern(true)
		default:
			return invalidValue()
		}
		switch r := rule.(type) {
		case *FixedDelimitersRule:
			r.prohibitedContent = prohibited
		case *ExtensibleFenceRule:
			r.prohibitedContent = prohibited
		case *InlineAssortedDelimitersRule:
			r.prohibitedContent = prohibited
		case *SpecifiedImageRule:
			r.prohibitedContent = prohibited
		case *ReferencedImageRule:
			r.prohibitedContent = prohibited
		case *SpecifiedLinkRule:
			r.prohibitedContent = prohibited
		case *ReferencedLinkRule:
			r.prohibitedContent = prohibited
		default:
			return unrecognised()
		}
		return nil

	case "tag_name":
		tagName := ""
		if trimmed != "NONE" {
			if !tagNamePattern.MatchString(trimmed) {
				return invalidValue()
			}
			tagName = trimmed
		}
		switch r := rule.(type) {
		case *FixedDelimitersRule:
			r.tagName = tagName
		case *ExtensibleFenceRule:
			r.tagName = tagName
		case *PartitioningRule:
			r.tagName = tagName
		default:
			return unrecognised()
		}
		return nil

	case "opening_delimiter", "closing_delimiter":
		r, ok := rule.(*FixedDelimitersRule)
		if !ok {
			return unrecognised()
		}
		if trimmed == "" {
			return invalidValue()
		}
		if name == "opening_delimiter" {
			r.openingDelimiter = trimmed
		} else {
			r.closingDelimiter = trimmed
		}
		return nil

	case "prologue_delimiter", "epilogue_delimiter":
		r, ok := rule.(*ExtensibleFenceRule)
		if !ok {
			return unrecognised()
		}
		if trimmed == "" {
			return invalidValue()
		}
		if trimmed == "NONE" {
			return nil
		}
		if name == "prologue_delimiter" {
			r.prologueDelimiter = trimmed
		} else {
			r.epilogueDelimiter = trimmed
		}
		return nil

	case "extensible_delimiter":
		r, ok := rule.(*ExtensibleFenceRule)
		if !ok {
			return unrecognised()
		}
		character, count, ok := parseRepeatedCharacter(trimmed)
		if !ok {
			return declarationErrorf(
				"invalid value `%s` not a character repeated for attribute `extensible_delimiter`", trimmed)
		}
		r.delimiterCharacter = character
		r.delimiterMinCount = count
		return nil

	case "starting_pattern", "ending_pattern":
		r, ok := rule.(*PartitioningRule)
		if !ok {
			return unrecognised()
		}
		if trimmed == "" {
			return invalidValue()
		}
		if name == "ending_pattern" && trimmed == "NONE" {
			return nil
		}
		if err := validateSubPattern(trimmed, name); err != nil {
			return err
		}
		if name == "starting_pattern" {
			r.startingPattern = trimmed
		} else {
			r.endingPattern, r.hasEndingPattern = trimmed, true
		}
		return nil

	case "delimiter_conversion":
		r, ok := rule.(*InlineAssortedDelimitersRule)
		if !ok {
			return unrecognised()
		}
		conversion, err := parseDelimiterConversion(value)
		if err != nil {
			return err
		}
		r.tagNameByLength = conversion
		return nil

	case "replacements":
		r, ok := rule.(*SequenceRule)
		if !ok {
			return unrecognised()
		}
		rules, err := a.resolveRules(pending, name, value)
		if err != nil {
			return err
		}
		r.replacements = rules
		return nil

	case "content_replacements":
		rules, err := a.resolveRules(pending, name, value)
		if err != nil {
			return err
		}
		switch r := rule.(type) {
		case *FixedDelimitersRule:
			r.contentReplacements = rules
		case *ExtensibleFenceRule:
			r.contentReplacements = rules
		case *PartitioningRule:
			r.contentReplacements = rules
		case *ExplicitLinkRule:
			r.contentReplacements = rules
		default:
			return unrecognised()
		}
		return nil

	case "concluding_replacements":
		rules, err := a.resolveRules(pending, name, value)
		if err != nil {
			return err
		}
		switch r := rule.(type) {
		case *OrdinaryDictionaryRule:
			r.concludingReplacements = rules
		case *RegexDictionaryRule:
			r.concludingReplacements = rules
		case *FixedDelimitersRule:
			r.concludingReplacements = rules
		case *ExtensibleFenceRule:
			r.concludingReplacements = rules
		case *PartitioningRule:
			r.concludingReplacements = rules
		case *ExplicitLinkRule:
			r.concludingReplacements = rules
		default:
			return unrecognised()
		}
		return nil
	}

	return unrecognised()
}

func (a *Authority) stageQueuePosition(rule Rule, trimmed string) error {
	b := rule.base()
	switch {
	case trimmed == "NONE":
		b.position = PositionNone
		return nil
	case trimmed == "ROOT":
		b.position = PositionRoot
		return nil
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 2 {
		if m := ruleReferencePattern.FindStringSubmatch(fields[1]); m != nil {
			switch fields[0] {
			case "BEFORE":
				b.position, b.referenceID = PositionBefore, m[1]
				return nil
			case "AFTER":
				b.position, b.referenceID = PositionAfter, m[1]
				return nil
			}
		}
	}
	return declarationErrorf("invalid value `%s` for attribute `queue_position`", trimmed)
}

func parseAllowedFlags(value string) (allowedFlags, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil, declarationErrorf("invalid specification `` for attribute `allowed_flags`")
	}
	if len(fields) == 1 && fields[0] == "NONE" {
		return nil, nil
	}

	var flags allowedFlags
	for _, field := range fields {
		m := allowedFlagPattern.FindStringSubmatch(field)
		if m == nil {
			return nil, declarationErrorf("invalid specification `%s` for attribute `allowed_flags`", field)
		}
		flags = append(flags, allowedFlag{letter: m[1], name: m[2]})
	}
	return flags, nil
}

func parseDelimiterConversion(value string) (map[string]map[int]string, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil, declarationErrorf("invalid specification `` for attribute `delimiter_conversion`")
	}

	conversion := map[string]map[int]string{}
	for _, field := range fields {
		delimiter, tagName, ok := strings.Cut(field, "=")
		if !ok || !tagNamePattern.MatchString(tagName) {
			return nil, declarationErrorf("invalid specification `%s` for attribute `delimiter_conversion`", field)
		}
		character, length, ok := parseRepeatedCharacter(delimiter)
		if !ok || length > 2 {
			return nil, declarationErrorf("invalid specification `%s` for attribute `delimiter_conversion`", field)
		}
		if conversion[character] == nil {
			conversion[character] = map[int]string{}
		}
		conversion[character][length] = tagName
	}
	return conversion, nil
}

// parseRepeatedCharacter parses a run of a single repeated character,
// returning the character and the run length.
func parseRepeatedCharacter(text string) (string, int, bool) {
	runes := []rune(text)
	if len(runes) == 0 {
		return "", 0, false
	}
	for _, r := range runes {
		if r != runes[0] {
			return "", 0, false
		}
	}
	return string(runes[0]), len(runes), true
}

// validateSubPattern checks a user-supplied partitioning pattern:
// it must compile, and must not declare named groups, which would
// collide with the groups of the enclosing pattern.
func validateSubPattern(pattern, attributeName string) error {
	compiled, err := compileRulePattern(pattern)
	if err != nil {
		return declarationErrorf("bad regex pattern `%s`: %s", pattern, err.Error())
	}
	for _, groupName := range compiled.GetGroupNames() {
		if !isAllDigits(groupName) {
			return declarationErrorf("named capture groups not allowed in `%s`", attributeName)
		}
	}
	return nil
}

func isAllDigits(text string) bool {
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(text) > 0
}

func (a *Authority) stageSubstitution(pending *pendingRule, substitution string) error {
	switch r := pending.rule.(type) {
	case *OrdinaryDictionaryRule:
		pattern, substitute, err := a.splitSubstitution(substitution, false)
		if err != nil {
			return err
		}
		r.substitutions = r.substitutions.add(pattern, substitute)
		return nil
	case *RegexDictionaryRule:
		pattern, substitute, err := a.splitSubstitution(substitution, true)
		if err != nil {
			return err
		}
		compiled, err := compileRulePattern(pattern)
		if err != nil {
			return declarationErrorf("bad regex pattern `%s`: %s", pattern, err.Error())
		}
		if err := validateTemplate(compiled, substitute); err != nil {
			return declarationErrorf("bad regex substitute `%s` for pattern `%s`: %s",
				substitute, pattern, err.Error())
		}
		r.substitutions = r.substitutions.add(pattern, substitute)
		return nil
	}
	return declarationErrorf("class `%s` does not allow substitutions", pending.className)
}

// splitSubstitution splits a substitution at the longest `-->` style
// delimiter it contains, resolving keyword substitutes. Keyword values
// are escaped when the substitute will be used as a template.
func (a *Authority) splitSubstitution(substitution string, isTemplate bool) (string, string, error) {
	delimiters := substitutionDelimiterPattern.FindAllString(substitution, -1)
	if len(delimiters) == 0 {
		return "", "", declarationErrorf("missing delimiter `-->` in substitution `%s`", substitution)
	}
	longest := delimiters[0]
	for _, delimiter := range delimiters[1:] {
		if len(delimiter) > len(longest) {
			longest = delimiter
		}
	}

	index := strings.Index(substitution, longest)
	pattern := unquoteSubstitutionPart(substitution[:index])
	substitutePart := substitution[index+len(longest):]

	keyword := ""
	switch strings.TrimSpace(substitutePart) {
	case "CMD_VERSION":
		keyword = Version
	case "CMD_NAME":
		keyword = a.cmdName
	case "CMD_BASENAME":
		keyword = extractBasename(a.cmdName)
	case "CLEAN_URL":
		keyword = makeCleanURL(a.cmdName)
	default:
		return pattern, unquoteSubstitutionPart(substitutePart), nil
	}

	if isTemplate {
		keyword = escapeTemplate(keyword)
	}
	return pattern, keyword, nil
}

// unquoteSubstitutionPart strips surrounding whitespace, then one
// layer of matched quotes if present. Quoting preserves significant
// leading or trailing whitespace in patterns and substitutes.
func unquoteSubstitutionPart(part string) string {
	trimmed := strings.TrimSpace(part)
	if len(trimmed) >= 2 {
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if first == last && (first == '"' || first == '\'') {
			return trimmed[1 : len(trimmed)-1]
		}
	}
	return trimmed
}

// validateTemplate checks the group references of a substitution
// template against a compiled pattern.
func validateTemplate(re *regexp2.Regexp, template string) error {
	for i := 0; i < len(template); i++ {
		switch template[i] {
		case '\\':
			if i+1 >= len(template) {
				return fmt.Errorf("trailing backslash")
			}
			switch template[i+1] {
			case '\\', 'n', 't':
			default:
				return fmt.Errorf("unrecognised escape `%s`", template[i:i+2])
			}
			i++
		case '$':
			if i+1 >= len(template) {
				return fmt.Errorf("trailing dollar")
			}
			next := template[i+1]
			switch {
			case next == '$':
				i++
			case next >= '0' && next <= '9':
				if !hasGroupNumber(re, int(next-'0')) {
					return fmt.Errorf("no group %c", next)
				}
				i++
			case next == '{':
				end := strings.IndexByte(template[i:], '}')
				if end < 0 {
					return fmt.Errorf("unterminated group reference")
				}
				name := template[i+2 : i+end]
				if re.GroupNumberFromName(name) < 0 {
					return fmt.Errorf("no group `%s`", name)
				}
				i += end
			default:
				return fmt.Errorf("bad group reference `%s`", template[i:i+2])
			}
		}
	}
	return nil
}

func hasGroupNumber(re *regexp2.Regexp, number int) bool {
	for _, n := range re.GetGroupNumbers() {
		if n == number {
			return true
		}
	}
	return false
}
