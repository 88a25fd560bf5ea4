// Package search implements literal text matching over buffer content.
//
// Two scanning rules coexist on purpose. FindAll reports overlapping
// matches: after a match at p the scan resumes at p+1, so "aa" occurs
// three times in "aaaa". Count and ReplaceAll are non-overlapping: the scan
// resumes after the end of each match, so the same input yields two.
//
// Case-insensitive matching folds ASCII letters byte by byte. Non-ASCII
// bytes are compared as-is, which keeps every reported offset valid in the
// original content.
package search

import (
	"strings"

	"github.com/dshills/vuno/internal/engine/buffer"
)

// Match is the byte range of one occurrence, [Start, End).
type Match = buffer.Range

// FoldASCII lowercases the ASCII letters of s and leaves every other byte
// untouched. The result has the same length as s.
func FoldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

func prepare(content, query string, caseSensitive bool) (string, string) {
	if caseSensitive {
		return content, query
	}
	return FoldASCII(content), FoldASCII(query)
}

// FindAll returns every occurrence of query in content, including
// overlapping ones, in ascending order. An empty query matches nothing.
func FindAll(content, query string, caseSensitive bool) []Match {
	if query == "" {
		return nil
	}
	haystack, needle := prepare(content, query, caseSensitive)

	var matches []Match
	pos := 0
	for pos <= len(haystack)-len(needle) {
		i := strings.Index(haystack[pos:], needle)
		if i < 0 {
			break
		}
		start := pos + i
		matches = append(matches, buffer.NewRange(
			buffer.ByteOffset(start),
			buffer.ByteOffset(start+len(needle)),
		))
		pos = start + 1
	}
	return matches
}

// Count returns the number of non-overlapping occurrences of query.
func Count(content, query string, caseSensitive bool) int {
	if query == "" {
		return 0
	}
	haystack, needle := prepare(content, query, caseSensitive)
	return strings.Count(haystack, needle)
}

// ReplaceAll substitutes every non-overlapping occurrence of query with
// replacement and returns the new content and the number of substitutions.
// Text outside the matched spans keeps its original casing.
func ReplaceAll(content, query, replacement string, caseSensitive bool) (string, int) {
	if query == "" {
		return content, 0
	}
	if caseSensitive {
		n := strings.Count(content, query)
		if n == 0 {
			return content, 0
		}
		return strings.ReplaceAll(content, query, replacement), n
	}

	haystack, needle := prepare(content, query, false)

	var sb strings.Builder
	n := 0
	last := 0
	for {
		i := strings.Index(haystack[last:], needle)
		if i < 0 {
			break
		}
		start := last + i
		if n == 0 {
			sb.Grow(len(content))
		}
		sb.WriteString(content[last:start])
		sb.WriteString(replacement)
		last = start + len(needle)
		n++
	}
	if n == 0 {
		return content, 0
	}
	sb.WriteString(content[last:])
	return sb.String(), n
}
