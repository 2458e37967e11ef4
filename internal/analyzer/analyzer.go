// Package analyzer classifies object nodes of a value tree and summarizes trees.
package analyzer

import (
	"github.com/mcncl/gobref/internal/models"
	"github.com/mcncl/gobref/internal/scanner"
)

// MaxKeyLength is the longest key the already-keyed heuristic accepts.
const MaxKeyLength = 20

// IsKeyed reports whether object items already form labelled key/value pairs
// that should bypass schema labelling: a non-empty, even-length sequence where
// every key is a string of at most MaxKeyLength bytes made of letters, digits
// and underscores.
func IsKeyed(items []models.Value) bool {
	if len(items) == 0 || len(items)%2 != 0 {
		return false
	}
	for i := 0; i < len(items); i += 2 {
		key, ok := items[i].AsString()
		if !ok || len(key) > MaxKeyLength || !scanner.IsIdentifier(key) {
			return false
		}
	}
	return true
}

// IsPairs reports whether object items can be rendered as a map: a non-empty,
// even-length sequence with a string at every even index. Key spelling is not
// checked, so schema field names of any length qualify.
func IsPairs(items []models.Value) bool {
	if len(items) == 0 || len(items)%2 != 0 {
		return false
	}
	for i := 0; i < len(items); i += 2 {
		if _, ok := items[i].AsString(); !ok {
			return false
		}
	}
	return true
}

// Summary counts the nodes of a value tree.
type Summary struct {
	Primitives int
	Keyed      int
	Positional int
	Arrays     int
	MaxDepth   int
}

// Analyze walks v and returns its node counts and maximum nesting depth.
func Analyze(v models.Value) Summary {
	var s Summary
	s.walk(v, 1)
	return s
}

func (s *Summary) walk(v models.Value, depth int) {
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	switch v.Kind {
	case models.ObjectKind:
		if IsPairs(v.Items) {
			s.Keyed++
			for i := 1; i < len(v.Items); i += 2 {
				s.walk(v.Items[i], depth+1)
			}
			return
		}
		s.Positional++
	case models.ArrayKind:
		s.Arrays++
	default:
		s.Primitives++
		return
	}
	for _, item := range v.Items {
		s.walk(item, depth+1)
	}
}
