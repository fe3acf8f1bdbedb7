// Package placeholder provides the protection mechanism that shields
// fragments of converted output from further rule application.
//
// Protected content is swapped out for an opaque token built from Unicode
// private-use code points. Tokens survive every later substitution pass
// untouched, and are swapped back for their content at the end of a
// conversion by Resolve.
package placeholder

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Marker delimits both ends of a placeholder token. It is a private-use
// code point that never occurs in well-formed input; raw occurrences in
// source text must be neutralised with ProtectMarkers before any token
// is minted.
const Marker = ''

// MarkerString is Marker as a string, for use in patterns and replacements.
const MarkerString = string(Marker)

const (
	runBase  = 0x100
	runFirst = ''
)

// ErrUnresolved is reported when Resolve exhausts its iteration bound
// while token-shaped sequences remain in the text.
var ErrUnresolved = errors.New("placeholder: unresolvable token remains")

// tokenPattern matches a complete placeholder token. Minted tokens
// always carry at least one run code point, so a pair of bare markers
// restored from protected content does not match.
var tokenPattern = regexp.MustCompile(`\x{F8FF}[\x{E000}-\x{E0FF}]+\x{F8FF}`)

// Store allocates placeholder tokens and remembers their content for the
// duration of one conversion. It is not safe for concurrent use; each
// conversion owns its own Store.
type Store struct {
	byContent map[string]string
	byToken   map[string]string
	counter   int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		byContent: make(map[string]string),
		byToken:   make(map[string]string),
	}
}

// Protect returns the token standing for content. Content is first
// canonicalised by resolving any tokens already embedded in it, so the
// stored form is always token-free and identical content always yields
// the identical token.
func (s *Store) Protect(content string) string {
	content = s.resolveOnce(content)
	if token, ok := s.byContent[content]; ok {
		return token
	}
	token := s.mintToken()
	s.byContent[content] = token
	s.byToken[token] = content
	return token
}

// ProtectMarkers replaces every raw occurrence of Marker in text with a
// token protecting the marker character itself. It must run before any
// other rule so that stray markers in source text cannot forge tokens.
func (s *Store) ProtectMarkers(text string) string {
	if !strings.ContainsRune(text, Marker) {
		return text
	}
	return strings.ReplaceAll(text, MarkerString, s.Protect(MarkerString))
}

// Resolve replaces every token in text with its stored content,
// repeating while the text still changes up to maxIterations passes.
// A token-shaped sequence surviving the final pass indicates a token
// that was never minted by this Store, or content that re-introduces
// tokens faster than they resolve; either way an error is returned.
// Bare marker characters restored from protected content are legitimate
// output and pass through untouched.
func (s *Store) Resolve(text string, maxIterations int) (string, error) {
	if maxIterations < 1 {
		maxIterations = 1
	}
	for i := 0; i < maxIterations; i++ {
		if !strings.ContainsRune(text, Marker) {
			return text, nil
		}
		resolved := s.resolveOnce(text)
		if resolved == text {
			break
		}
		text = resolved
	}
	if tokenPattern.MatchString(text) {
		return text, fmt.Errorf("%w after resolution", ErrUnresolved)
	}
	return text, nil
}

// Unprotect performs a single resolution pass, substituting each
// recognised token with its stored content. Stored content is token-free
// by construction, so one pass normally suffices; Resolve exists for the
// final pass where leftovers must be treated as errors.
func (s *Store) Unprotect(text string) string {
	return s.resolveOnce(text)
}

// resolveOnce substitutes each recognised token exactly once. Unknown
// tokens are left in place.
func (s *Store) resolveOnce(text string) string {
	if !strings.ContainsRune(text, Marker) {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		if content, ok := s.byToken[token]; ok {
			return content
		}
		return token
	})
}

// mintToken encodes the next counter value as a run of private-use code
// points between two markers.
func (s *Store) mintToken() string {
	n := s.counter
	s.counter++

	var run []rune
	for {
		run = append([]rune{runFirst + rune(n%runBase)}, run...)
		n /= runBase
		if n == 0 {
			break
		}
	}
	return MarkerString + string(run) + MarkerString
}
