// Package location decides whether the free-text location of a job posting
// references one of the allowed locations.
//
// Terms are matched as whole words or whole phrases, never as substrings:
// "usa" matches "Remote - USA only" but not "Australia" or "Jerusalem".
// Terms are compared literally, so punctuation such as "u.s." or "us/canada"
// has no special meaning.
package location

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultAllowed is the built-in allow-list used when no list is configured.
var defaultAllowed = [...]string{
	"united states", "usa", "u.s.", "america",
	"canada", "north america", "americas", "us/canada",
	"remote", "worldwide", "global", "anywhere",
}

// DefaultAllowed returns a fresh copy of the built-in allow-list.
func DefaultAllowed() []string {
	return append([]string(nil), defaultAllowed[:]...)
}

// Matcher holds a normalised allow-list. It is immutable once built and safe
// for concurrent use.
type Matcher struct {
	terms []string
}

// NewMatcher normalises allowed once so repeated Match calls skip the work.
// Blank terms are dropped. An empty list produces a matcher that never matches.
func NewMatcher(allowed []string) *Matcher {
	lower := cases.Lower(language.Und)
	terms := make([]string, 0, len(allowed))
	for _, t := range allowed {
		t = strings.TrimSpace(lower.String(t))
		if t == "" {
			continue
		}
		terms = append(terms, t)
	}
	return &Matcher{terms: terms}
}

// Default returns a matcher over the built-in allow-list.
func Default() *Matcher {
	return NewMatcher(defaultAllowed[:])
}

// Terms returns a copy of the normalised terms.
func (m *Matcher) Terms() []string {
	return append([]string(nil), m.terms...)
}

// Match reports whether text contains any allowed term bounded by non-word
// runes or the edges of the string. The first matching term wins.
func (m *Matcher) Match(text string) bool {
	if len(m.terms) == 0 || text == "" {
		return false
	}
	// A Caser carries state, so each call gets its own.
	text = cases.Lower(language.Und).String(text)
	for _, term := range m.terms {
		if containsWord(text, term) {
			return true
		}
	}
	return false
}

// Matches reports whether text references any of the allowed terms.
// An empty allow-list never matches; use MatchesDefault for the built-in list.
func Matches(text string, allowed []string) bool {
	return NewMatcher(allowed).Match(text)
}

// MatchesDefault is Matches against the built-in allow-list.
func MatchesDefault(text string) bool {
	return Matches(text, defaultAllowed[:])
}

// containsWord reports whether term occurs in text with no word rune directly
// before or after it. Every occurrence is tried, so an embedded first hit does
// not hide a later standalone one.
func containsWord(text, term string) bool {
	from := 0
	for from <= len(text)-len(term) {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		if !wordRuneBefore(text, start) && !wordRuneAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func wordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordRuneAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

// isWordRune mirrors the Unicode \w class: letters, numbers of any kind
// (so "²" and "Ⅻ" count) and underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
