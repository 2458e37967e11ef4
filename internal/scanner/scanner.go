// Package scanner provides quote- and depth-aware scanning over bref text.
package scanner

import (
	"strings"
	"unicode"
)

// state tracks string and nesting context while walking text byte by byte.
type state struct {
	inString   bool
	escapeNext bool
	braces     int
	brackets   int
}

// step advances the state over c and reports whether c is structural, that is
// outside a string and not consumed as part of an escape or quote.
func (s *state) step(c byte) bool {
	if s.escapeNext {
		s.escapeNext = false
		return false
	}
	switch c {
	case '\\':
		if s.inString {
			s.escapeNext = true
			return false
		}
	case '"':
		s.inString = !s.inString
		return false
	}
	if s.inString {
		return false
	}
	switch c {
	case '{':
		s.braces++
	case '}':
		s.braces--
	case '[':
		s.brackets++
	case ']':
		s.brackets--
	}
	return true
}

func (s *state) topLevel() bool {
	return s.braces == 0 && s.brackets == 0
}

// FindSimpleColon returns the index of the first colon outside a quoted string
// whose trimmed prefix looks like an identifier key (letters, digits, underscore).
func FindSimpleColon(text string) (int, bool) {
	var s state
	for i := 0; i < len(text); i++ {
		c := text[i]
		if s.escapeNext {
			s.escapeNext = false
			continue
		}
		switch {
		case c == '\\' && s.inString:
			s.escapeNext = true
		case c == '"':
			s.inString = !s.inString
		case c == ':' && !s.inString:
			if IsIdentifier(strings.TrimSpace(text[:i])) {
				return i, true
			}
		}
	}
	return -1, false
}

// FindMainColon returns the index of the rightmost colon at brace and bracket
// depth zero outside any quoted string.
func FindMainColon(text string) (int, bool) {
	var s state
	last := -1
	for i := 0; i < len(text); i++ {
		if s.step(text[i]) && text[i] == ':' && s.topLevel() {
			last = i
		}
	}
	return last, last >= 0
}

// SplitTopLevel splits text on sep wherever sep is outside strings and nested
// groups. Segments are trimmed; empty segments are dropped.
func SplitTopLevel(text string, sep byte) []string {
	var (
		s        state
		segments []string
		start    int
	)
	flush := func(end int) {
		if seg := strings.TrimSpace(text[start:end]); seg != "" {
			segments = append(segments, seg)
		}
	}
	for i := 0; i < len(text); i++ {
		if s.step(text[i]) && text[i] == sep && s.topLevel() {
			flush(i)
			start = i + 1
		}
	}
	flush(len(text))
	return segments
}

// Enclosed reports whether text opens with open and the group it opens is
// closed by the final byte of text.
func Enclosed(text string, open, close byte) bool {
	if len(text) < 2 || text[0] != open || text[len(text)-1] != close {
		return false
	}
	var s state
	for i := 0; i < len(text); i++ {
		if s.step(text[i]) && s.topLevel() {
			return i == len(text)-1
		}
	}
	return false
}

// Inner returns text with its first and last byte removed.
// Callers check Enclosed first.
func Inner(text string) string {
	if len(text) < 2 {
		return ""
	}
	return text[1 : len(text)-1]
}

// IsIdentifier reports whether s consists only of letters, digits and
// underscores. The empty string qualifies.
func IsIdentifier(s string) bool {
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
