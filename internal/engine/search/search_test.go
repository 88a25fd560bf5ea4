package search

import (
	"testing"
)

func TestFoldASCII(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"already lower", "already lower"},
		{"MiXeD Case", "mixed case"},
		{"ÄBC", "Äbc"},
		{"İX", "İx"},
	}

	for _, tt := range tests {
		got := FoldASCII(tt.input)
		if got != tt.want {
			t.Errorf("FoldASCII(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if len(got) != len(tt.input) {
			t.Errorf("FoldASCII(%q) changed length: %d -> %d", tt.input, len(tt.input), len(got))
		}
	}
}

func TestFindAll_Overlapping(t *testing.T) {
	got := FindAll("aaaa", "aa", true)
	want := []Match{{Start: 0, End: 2}, {Start: 1, End: 3}, {Start: 2, End: 4}}

	if len(got) != len(want) {
		t.Fatalf("FindAll() returned %d matches, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFindAll(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		query         string
		caseSensitive bool
		want          []Match
	}{
		{"no match", "hello", "xyz", true, nil},
		{"empty query", "hello", "", true, nil},
		{"query longer than content", "hi", "hello", true, nil},
		{"case sensitive miss", "Hello", "hello", true, nil},
		{"case insensitive hit", "Hello HELLO", "hello", false, []Match{{Start: 0, End: 5}, {Start: 6, End: 11}}},
		{"multibyte offsets", "héllo héllo", "llo", true, []Match{{Start: 3, End: 6}, {Start: 10, End: 13}}},
		{"three overlapping", "aaa", "aa", true, []Match{{Start: 0, End: 2}, {Start: 1, End: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAll(tt.content, tt.query, tt.caseSensitive)
			if len(got) != len(tt.want) {
				t.Fatalf("FindAll() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("match[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		content       string
		query         string
		caseSensitive bool
		want          int
	}{
		{"aaaa", "aa", true, 2},
		{"aaa", "aa", true, 1},
		{"fooFOOfoo", "Foo", false, 3},
		{"fooFOOfoo", "Foo", true, 0},
		{"abc", "", true, 0},
	}

	for _, tt := range tests {
		if got := Count(tt.content, tt.query, tt.caseSensitive); got != tt.want {
			t.Errorf("Count(%q, %q, %v) = %d, want %d", tt.content, tt.query, tt.caseSensitive, got, tt.want)
		}
	}
}

func TestReplaceAll(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		query         string
		replacement   string
		caseSensitive bool
		want          string
		wantCount     int
	}{
		{"non-overlapping", "aaaa", "aa", "b", true, "bb", 2},
		{"case insensitive", "fooFOOfoo", "Foo", "X", false, "XXX", 3},
		{"preserves unmatched casing", "Say HELLO to Hello", "hello", "bye", false, "Say bye to bye", 2},
		{"keeps surrounding text", "-Foo-", "foo", "bar", false, "-bar-", 1},
		{"no match", "abc", "z", "y", true, "abc", 0},
		{"empty query", "abc", "", "y", true, "abc", 0},
		{"replacement contains query", "ab", "a", "aa", true, "aab", 1},
		{"delete matches", "a-b-c", "-", "", true, "abc", 2},
		{"multibyte", "héllo", "é", "e", true, "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := ReplaceAll(tt.content, tt.query, tt.replacement, tt.caseSensitive)
			if got != tt.want {
				t.Errorf("ReplaceAll() content = %q, want %q", got, tt.want)
			}
			if n != tt.wantCount {
				t.Errorf("ReplaceAll() count = %d, want %d", n, tt.wantCount)
			}
			if c := Count(tt.content, tt.query, tt.caseSensitive); c != n {
				t.Errorf("Count() = %d disagrees with substitutions %d", c, n)
			}
		})
	}
}
