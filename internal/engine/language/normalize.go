package language

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// chromaNames maps lower-cased chroma lexer names whose form differs from
// our tag.
var chromaNames = map[string]string{
	"bash": "shellscript",
	"c++":  "cpp",
	"c#":   "csharp",
}

var known = func() map[string]bool {
	m := make(map[string]bool, len(extensions))
	for _, tag := range extensions {
		m[tag] = true
	}
	return m
}()

// Normalize resolves a user-supplied language name, alias or extension to
// a canonical tag. Tags produced by Detect are returned unchanged; anything
// else is looked up in the chroma lexer registry.
func Normalize(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	lower := strings.ToLower(name)
	if known[lower] {
		return lower, true
	}

	lexer := lexers.Get(name)
	if lexer == nil {
		return "", false
	}
	canonical := strings.ToLower(lexer.Config().Name)
	if tag, ok := chromaNames[canonical]; ok {
		return tag, true
	}
	return canonical, true
}
