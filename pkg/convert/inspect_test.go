package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRules_StandardCascade(t *testing.T) {
	rules, diagnostics, err := ListRules("", "STANDARD_RULES")
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	require.NotEmpty(t, rules)

	byID := make(map[string]RuleInfo, len(rules))
	for _, rule := range rules {
		byID[rule.ID] = rule
	}

	root, ok := byID["placeholder-markers"]
	require.True(t, ok)
	assert.Equal(t, "PlaceholderMarkerReplacement", root.Class)
	assert.True(t, root.Queued)
	assert.Equal(t, 0, root.QueueIndex)

	// Content replacements are registered but not queued.
	escape, ok := byID["escape-html"]
	require.True(t, ok)
	assert.Equal(t, "OrdinaryDictionaryReplacement", escape.Class)
	assert.False(t, escape.Queued)

	// Queued rules come first, in application order.
	lastIndex := -1
	for _, rule := range rules {
		if !rule.Queued {
			assert.Equal(t, -1, rule.QueueIndex)
			continue
		}
		assert.Greater(t, rule.QueueIndex, lastIndex)
		lastIndex = rule.QueueIndex
	}
}

func TestListRules_UserRulesLayered(t *testing.T) {
	source := `OrdinaryDictionaryReplacement: #site-name
- queue_position: BEFORE #headings
* SITE_NAME --> Example

%%%
SITE_NAME
`
	rules, diagnostics, err := ListRules(source, "page.cmd")
	require.NoError(t, err)
	assert.Empty(t, diagnostics)

	var siteName, headings *RuleInfo
	for i := range rules {
		switch rules[i].ID {
		case "site-name":
			siteName = &rules[i]
		case "headings":
			headings = &rules[i]
		}
	}
	require.NotNil(t, siteName)
	require.NotNil(t, headings)
	assert.True(t, siteName.Queued)
	assert.Less(t, siteName.QueueIndex, headings.QueueIndex)
}

func TestListRules_SpoiledDeclarationReported(t *testing.T) {
	source := `OrdinaryDictionaryReplacement: #broken
- no_such_attribute: VALUE

%%%
`
	rules, diagnostics, err := ListRules(source, "page.cmd")
	require.NoError(t, err)
	require.NotEmpty(t, diagnostics)
	assert.Equal(t, "page.cmd", diagnostics[0].File)

	for _, rule := range rules {
		assert.NotEqual(t, "broken", rule.ID)
	}
}
