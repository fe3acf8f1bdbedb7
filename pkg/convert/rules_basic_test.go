package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommonPrefix(t *testing.T) {
	assert.Equal(t, "", commonPrefix("a", "b"))
	assert.Equal(t, "  ", commonPrefix("  ", "   "))
	assert.Equal(t, "\t  ", commonPrefix("\t  3", "\t   \t \t"))
	assert.Equal(t, "ab", commonPrefix("ab", "ab"))
}

func TestDeIndent(t *testing.T) {
	assert.Equal(t,
		"\n4 spaces\n\n  4 spaces + 2 spaces\n  \t   4 spaces + 2 spaces, 1 tab, 3 spaces\n \n 4 spaces + 1 space (this line and above)\n",
		deIndent("\n    4 spaces\n\n      4 spaces + 2 spaces\n      \t   4 spaces + 2 spaces, 1 tab, 3 spaces\n     \n     4 spaces + 1 space (this line and above)\n"),
	)

	// A whitespace-only last line is erased before the common
	// indentation is computed.
	assert.Equal(t,
		"\n And,\nWhitespace before closing delimiter:\n",
		deIndent("\n\t\t \t\t\t\t\t\t And,\n\t\t \t\t\t\t\t\tWhitespace before closing delimiter:\n        "),
	)
}

func TestSequenceRule(t *testing.T) {
	first := &DeIndentRule{ruleBase: ruleBase{id: "de-indent"}}
	sequence := &SequenceRule{
		ruleBase:     ruleBase{id: "sequence"},
		replacements: []Rule{first},
	}
	require.NoError(t, sequence.commit())

	applied, err := sequence.Apply("  a\n  b\n", nil)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", applied)
}

func TestPlaceholderRules(t *testing.T) {
	env := newEnvironment(nil, false, 0)

	protect := &PlaceholderProtectRule{ruleBase: ruleBase{id: "protect", env: env}}
	protected, err := protect.Apply("<b>keep</b>", nil)
	require.NoError(t, err)
	assert.NotEqual(t, "<b>keep</b>", protected)

	unprotect := &PlaceholderUnprotectRule{ruleBase: ruleBase{id: "unprotect", env: env}}
	restored, err := unprotect.Apply(protected, nil)
	require.NoError(t, err)
	assert.Equal(t, "<b>keep</b>", restored)
}
