package convert

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/conwaymd/conwaymd/pkg/placeholder"
)

// Fragment builders for rule patterns. All fragments are written in the
// free-spacing rule dialect, so literal whitespace must sit inside
// character classes or escapes.

// blockTagNames are the HTML elements whose tags terminate content that
// prohibits blocks.
var blockTagNames = []string{
	"address", "article", "aside", "blockquote",
	"dd", "details", "dialog", "div", "dl", "dt",
	"fieldset", "figcaption", "figure", "footer", "form",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"header", "hgroup", "hr", "li", "main", "nav",
	"ol", "p", "pre", "section",
	"table", "tbody", "td", "tfoot", "th", "thead", "ul",
}

// blockTagPattern matches the start of a block-level HTML tag, open or
// closing. The placeholder marker counts as a tag terminator since
// protected attribute sequences begin with one.
func blockTagPattern(anchored bool) string {
	pattern := `[<] [/]? (?: ` + strings.Join(blockTagNames, " | ") + ` ) [\s` + placeholder.MarkerString + `>]`
	if anchored {
		pattern = blockAnchoringPattern(true, false) + " " + pattern
	}
	return pattern
}

// blockAnchoringPattern anchors a block construct at a line start,
// allowing leading indentation. Inline constructs get no anchoring.
func blockAnchoringPattern(syntaxIsBlock, capture bool) string {
	if !syntaxIsBlock {
		return ""
	}
	if capture {
		return `^ (?<anchoring_whitespace> [^\S\n]* )`
	}
	return `^ [^\S\n]*`
}

// hangingWhitespacePattern matches whitespace that may continue onto
// the next line, hanging under the captured anchoring whitespace.
func hangingWhitespacePattern() string {
	return `[^\S\n]* (?: \n \k<anchoring_whitespace> [^\S\n]+ )?`
}

// flagsGroup captures a possibly empty run of the allowed flag letters.
func flagsGroup(flagLetters []string) string {
	if len(flagLetters) == 0 {
		return ""
	}
	var class strings.Builder
	for _, letter := range flagLetters {
		class.WriteString(escapeLiteral(letter))
	}
	return `(?<flags> [` + class.String() + `]* )`
}

// attributeSpecificationsGroup matches a brace-delimited attribute
// specifications run. The group is optional when omission is allowed,
// and for block constructs a newline follows it.
func attributeSpecificationsGroup(capture, allowOmission, requireNewline bool) string {
	var pattern string
	if capture {
		pattern = `\{ (?<attribute_specifications> [^}]*? ) \}`
	} else {
		pattern = `\{ [^}]*? \}`
	}
	if allowOmission {
		pattern = `(?: ` + pattern + ` )?`
	}
	if requireNewline {
		pattern += ` \n`
	}
	return pattern
}

// contentGroup lazily captures content under name. Each atom of the
// content must not start a prohibited match. An empty permitted pattern
// admits any character.
func contentGroup(name, permitted, prohibited string, requireNonEmpty bool) string {
	if permitted == "" {
		permitted = `[\s\S]`
	}
	atom := permitted
	if prohibited != "" {
		atom = `(?: (?! ` + prohibited + ` ) ` + permitted + ` )`
	}
	quantifier := `*?`
	if requireNonEmpty {
		quantifier = `+?`
	}
	return group(name, ` `+atom+` `+quantifier+` `)
}

// capturedCharacterClass captures a single character of a class.
func capturedCharacterClass(name, characters string) string {
	return group(name, ` [`+characters+`] `)
}

// uriPattern matches either an angle-bracketed or a bare URI.
func uriPattern(greedy bool) string {
	bare := `[\S]+?`
	if greedy {
		bare = `[\S]+`
	}
	return `(?: [<] (?<angle_bracketed_uri> [^>]*? ) [>] | (?<bare_uri> ` + bare + ` ) )`
}

// titlePattern matches a quoted link or image title.
func titlePattern() string {
	return `(?: "(?<double_quoted_title> [^"]*? )" | '(?<single_quoted_title> [^']*? )' )`
}

// uriFromMatch picks whichever URI alternative participated.
func uriFromMatch(m *regexp2.Match) string {
	if groupPresent(m, "angle_bracketed_uri") {
		return groupValue(m, "angle_bracketed_uri")
	}
	return groupValue(m, "bare_uri")
}

// titleFromMatch picks whichever title alternative participated,
// reporting whether a title was given at all.
func titleFromMatch(m *regexp2.Match) (string, bool) {
	if groupPresent(m, "double_quoted_title") {
		return groupValue(m, "double_quoted_title"), true
	}
	if groupPresent(m, "single_quoted_title") {
		return groupValue(m, "single_quoted_title"), true
	}
	return "", false
}
