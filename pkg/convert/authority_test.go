package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthority() (*Authority, *environment) {
	env := newEnvironment(nil, false, 0)
	return newAuthority(env, "test", nil), env
}

func legislate(t *testing.T, rules string) (*Authority, *environment) {
	t.Helper()
	authority, env := newTestAuthority()
	require.NoError(t, authority.Legislate(rules, "rules.cmd"))
	return authority, env
}

func mustLookup(t *testing.T, authority *Authority, id string) Rule {
	t.Helper()
	rule, ok := authority.Registry().lookup(id)
	require.True(t, ok, "rule #%s not registered", id)
	return rule
}

func TestLegislate_QueuePositions(t *testing.T) {
	authority, env := legislate(t, `DeIndentationReplacement: #middle
- queue_position: ROOT

DeIndentationReplacement: #first
- queue_position: BEFORE #middle

DeIndentationReplacement: #last
- queue_position: AFTER #middle

DeIndentationReplacement: #unqueued
`)
	assert.Empty(t, env.diagnostics)
	assert.Equal(t, []string{"first", "middle", "last"}, queueIDs(authority.Registry()))

	mustLookup(t, authority, "unqueued")
}

func TestLegislate_CommentsAndBlankLines(t *testing.T) {
	_, env := legislate(t, `# This comment line is ignored.

# So is this one.

DeIndentationReplacement: #only
`)
	assert.Empty(t, env.diagnostics)
}

func TestLegislate_InvalidSyntaxIsDiagnostic(t *testing.T) {
	_, env := legislate(t, "not a declaration at all\n")
	require.Len(t, env.diagnostics, 1)
	assert.Contains(t, env.diagnostics[0].Message, "invalid syntax")
	assert.Equal(t, 1, env.diagnostics[0].Line)
}

func TestLegislate_SpoiledRuleIsSkipped(t *testing.T) {
	authority, env := legislate(t, `OrdinaryDictionaryReplacement: #broken
- tag_name: div

OrdinaryDictionaryReplacement: #fine
* a --> b
`)
	require.Len(t, env.diagnostics, 1)
	assert.Contains(t, env.diagnostics[0].Message, "unrecognised attribute `tag_name`")

	_, ok := authority.Registry().lookup("broken")
	assert.False(t, ok)
	mustLookup(t, authority, "fine")
}

func TestLegislate_SubstitutionSplitsAtLongestDelimiter(t *testing.T) {
	authority, _ := legislate(t, `OrdinaryDictionaryReplacement: #arrows
* x ---> --> y
`)
	rule := mustLookup(t, authority, "arrows")
	applied, err := rule.Apply("x", nil)
	require.NoError(t, err)
	assert.Equal(t, "--> y", applied)
}

func TestLegislate_QuotedSubstitutionPartsKeepWhitespace(t *testing.T) {
	authority, _ := legislate(t, `OrdinaryDictionaryReplacement: #spacing
* " a " --> "  b  "
`)
	rule := mustLookup(t, authority, "spacing")
	applied, err := rule.Apply("x a x", nil)
	require.NoError(t, err)
	assert.Equal(t, "x  b  x", applied)
}

func TestLegislate_MissingSubstitutionDelimiterIsDiagnostic(t *testing.T) {
	_, env := legislate(t, `OrdinaryDictionaryReplacement: #broken
* a only
`)
	require.NotEmpty(t, env.diagnostics)
	assert.Contains(t, env.diagnostics[0].Message, "missing delimiter")
}

func TestLegislate_ContinuationLines(t *testing.T) {
	authority, env := legislate(t, `OrdinaryDictionaryReplacement: #multiline
* before
    -->
  after
`)
	assert.Empty(t, env.diagnostics)
	rule := mustLookup(t, authority, "multiline")
	applied, err := rule.Apply("before", nil)
	require.NoError(t, err)
	assert.Equal(t, "after", applied)
}

func TestLegislate_SubstitutionsRequireDictionaryClass(t *testing.T) {
	_, env := legislate(t, `DeIndentationReplacement: #not-a-dictionary
* a --> b
`)
	require.NotEmpty(t, env.diagnostics)
	assert.Contains(t, env.diagnostics[0].Message, "does not allow substitutions")
}

func TestLegislate_UndefinedReplacementReference(t *testing.T) {
	_, env := legislate(t, `OrdinaryDictionaryReplacement: #needy
- concluding_replacements:
    #nowhere-to-be-found
* a --> b
`)
	require.NotEmpty(t, env.diagnostics)
	assert.Contains(t, env.diagnostics[0].Message, "undefined replacement `#nowhere-to-be-found`")
}

func TestLegislate_NegativeFlagGating(t *testing.T) {
	authority, _ := legislate(t, `OrdinaryDictionaryReplacement: #gated
- positive_flag: WANTED
- negative_flag: BLOCKED
* a --> b
`)
	rule := mustLookup(t, authority, "gated")

	applied, err := rule.Apply("a", nil)
	require.NoError(t, err)
	assert.Equal(t, "b", applied, "nil flag context applies unconditionally")

	applied, err = rule.Apply("a", NewFlagSet())
	require.NoError(t, err)
	assert.Equal(t, "a", applied, "positive flag absent")

	applied, err = rule.Apply("a", NewFlagSet("WANTED"))
	require.NoError(t, err)
	assert.Equal(t, "b", applied)

	applied, err = rule.Apply("a", NewFlagSet("WANTED", "BLOCKED"))
	require.NoError(t, err)
	assert.Equal(t, "a", applied, "negative flag present")
}

func TestLegislate_RegexDictionaryKeywordSubstitutes(t *testing.T) {
	env := newEnvironment(nil, false, 0)
	authority := newAuthority(env, "path/to/index", nil)
	require.NoError(t, authority.Legislate(`RegexDictionaryReplacement: #names
* NAME --> CMD_NAME
* BASE --> CMD_BASENAME
* CLEAN --> CLEAN_URL
`, "rules.cmd"))

	rule := mustLookup(t, authority, "names")
	applied, err := rule.Apply("NAME BASE CLEAN", nil)
	require.NoError(t, err)
	assert.Equal(t, "path/to/index index path/to/", applied)
}

func TestLegislate_AttributeOutsideClassScope(t *testing.T) {
	_, env := legislate(t, "- queue_position: ROOT\n")
	require.Len(t, env.diagnostics, 1)
	assert.Contains(t, env.diagnostics[0].Message, "without an active class declaration")
}

func TestLegislate_EarlierQueuedRuleSeesUntransformedText(t *testing.T) {
	authority, env := legislate(t, `OrdinaryDictionaryReplacement: #base
- queue_position: ROOT
* a --> b

OrdinaryDictionaryReplacement: #earlier
- queue_position: BEFORE #base
* a --> c
`)
	applied, err := executeTraced(authority.Registry(), env, "a")
	require.NoError(t, err)
	assert.Equal(t, "c", applied)
}

func TestLegislate_InclusionWithoutIncluderFails(t *testing.T) {
	authority, _ := newTestAuthority()
	err := authority.Legislate("< helpers.cmd\n", "rules.cmd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported here")
}
