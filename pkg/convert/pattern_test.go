package convert

import (
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLiteral(t *testing.T) {
	assert.Equal(t, "abc123", escapeLiteral("abc123"))
	assert.Equal(t, `[<][|]`, escapeLiteral("<|"))
	assert.Equal(t, `[\]]`, escapeLiteral("]"))
	assert.Equal(t, `[\\]`, escapeLiteral(`\`))
	assert.Equal(t, `[\^]`, escapeLiteral("^"))
	assert.Equal(t, `\n`, escapeLiteral("\n"))
}

func TestEscapeLiteral_CompilesAndMatchesItself(t *testing.T) {
	literals := []string{"<|", "|>", "''", `""`, "====", "++", "{-}", "a^b]c"}
	for _, literal := range literals {
		re, err := compilePattern(escapeLiteral(literal), ruleOptions)
		require.NoError(t, err, "literal %q", literal)
		m, err := re.FindStringMatch("x" + literal + "y")
		require.NoError(t, err)
		require.NotNil(t, m, "literal %q", literal)
		assert.Equal(t, literal, m.String())
	}
}

func TestEscapeTemplate(t *testing.T) {
	assert.Equal(t, `a/b`, escapeTemplate("a/b"))
	assert.Equal(t, `a\\b`, escapeTemplate(`a\b`))
	assert.Equal(t, `$$1`, escapeTemplate("$1"))
}

func TestExpandTemplate(t *testing.T) {
	re, err := compilePattern(`(?<first> a+ ) (?<second> b+ )`, ruleOptions)
	require.NoError(t, err)
	m, err := re.FindStringMatch("aaabb")
	require.NoError(t, err)
	require.NotNil(t, m)

	expanded, err := expandTemplate(m, `${second}-${first}-$0`)
	require.NoError(t, err)
	assert.Equal(t, "bb-aaa-aaabb", expanded)

	expanded, err = expandTemplate(m, `$$ \\ \n \t`)
	require.NoError(t, err)
	assert.Equal(t, "$ \\ \n \t", expanded)

	_, err = expandTemplate(m, `${missing}`)
	assert.Error(t, err)
}

func TestCompileRulePattern_IgnoresPatternWhitespace(t *testing.T) {
	re, err := compileRulePattern(`a b  c # trailing comment`)
	require.NoError(t, err)
	m, err := re.FindStringMatch("xabcy")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "abc", m.String())
}

func TestCompileRulePattern_MultilineAnchors(t *testing.T) {
	re, err := compileRulePattern(`^ b $`)
	require.NoError(t, err)
	m, err := re.FindStringMatch("a\nb\nc")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "b", m.String())
}

func TestCompileSpanPattern_AnchorsToWholeText(t *testing.T) {
	re, err := compileSpanPattern(`^ b`)
	require.NoError(t, err)
	m, err := re.FindStringMatch("a\nb")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestReplaceAll_EvaluatorErrors(t *testing.T) {
	re := regexp2.MustCompile("a", regexp2.None)

	replaced, err := replaceAll(re, "aba", -1, func(m *regexp2.Match) (string, error) {
		return "X", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "XbX", replaced)

	_, err = replaceAll(re, "aba", -1, func(m *regexp2.Match) (string, error) {
		return "", assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestReplaceAll_EvaluatorSeesMatchGroups(t *testing.T) {
	re := regexp2.MustCompile(`(?<word>[a-z]+)`, regexp2.None)

	replaced, err := replaceAll(re, "one two", 1, func(m *regexp2.Match) (string, error) {
		return groupValue(m, "word") + "!", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "one! two", replaced)
}
