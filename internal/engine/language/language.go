// Package language infers the language tag of a document.
//
// Detection is a pure function of the file path and content and runs once,
// when a buffer is created. Precedence, first match wins:
//
//  1. the file extension, through a fixed table;
//  2. a shebang line, classified by go-enry;
//  3. content heuristics that look for an entry point together with an
//     output call (for example "fn main" and "println!" for Rust).
//
// An empty tag means no language was recognized.
package language

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// extensions maps lower-cased file extensions to language tags.
var extensions = map[string]string{
	".go":       "go",
	".py":       "python",
	".pyw":      "python",
	".js":       "javascript",
	".mjs":      "javascript",
	".cjs":      "javascript",
	".ts":       "typescript",
	".jsx":      "javascriptreact",
	".tsx":      "typescriptreact",
	".rs":       "rust",
	".rb":       "ruby",
	".java":     "java",
	".c":        "c",
	".h":        "c",
	".cpp":      "cpp",
	".cc":       "cpp",
	".cxx":      "cpp",
	".hpp":      "cpp",
	".cs":       "csharp",
	".php":      "php",
	".swift":    "swift",
	".kt":       "kotlin",
	".kts":      "kotlin",
	".scala":    "scala",
	".html":     "html",
	".htm":      "html",
	".css":      "css",
	".scss":     "scss",
	".less":     "less",
	".json":     "json",
	".yaml":     "yaml",
	".yml":      "yaml",
	".xml":      "xml",
	".md":       "markdown",
	".markdown": "markdown",
	".sql":      "sql",
	".sh":       "shellscript",
	".bash":     "shellscript",
	".zsh":      "shellscript",
	".ps1":      "powershell",
	".lua":      "lua",
	".r":        "r",
	".jl":       "julia",
	".ex":       "elixir",
	".exs":      "elixir",
	".erl":      "erlang",
	".hs":       "haskell",
	".ml":       "ocaml",
	".mli":      "ocaml",
	".clj":      "clojure",
	".cljs":     "clojure",
	".vim":      "vim",
	".toml":     "toml",
	".ini":      "ini",
	".cfg":      "ini",
	".proto":    "protobuf",
	".graphql":  "graphql",
	".gql":      "graphql",
	".svelte":   "svelte",
	".txt":      "plaintext",
}

// enryNames maps go-enry language names whose lower-case form differs from
// our tag.
var enryNames = map[string]string{
	"Shell":      "shellscript",
	"C++":        "cpp",
	"C#":         "csharp",
	"Emacs Lisp": "elisp",
}

// heuristic is a crude content rule: all markers must be present.
type heuristic struct {
	tag     string
	markers []string
}

// heuristics are evaluated in order.
var heuristics = []heuristic{
	{"rust", []string{"fn main", "println!"}},
	{"go", []string{"func main", "fmt.Print"}},
	{"python", []string{"def ", "print("}},
	{"cpp", []string{"int main", "std::cout"}},
	{"c", []string{"int main", "printf("}},
	{"java", []string{"static void main", "System.out.print"}},
	{"javascript", []string{"function", "console.log"}},
	{"html", []string{"<!DOCTYPE html"}},
	{"html", []string{"<html"}},
}

// Detect returns the language tag for a document, or "" if none applies.
func Detect(path, content string) string {
	if tag := FromPath(path); tag != "" {
		return tag
	}
	if tag := FromShebang(content); tag != "" {
		return tag
	}
	return FromContent(content)
}

// FromPath classifies by file extension, ignoring case.
func FromPath(path string) string {
	if path == "" {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	return extensions[ext]
}

// FromShebang classifies a leading "#!" line.
func FromShebang(content string) string {
	if !strings.HasPrefix(content, "#!") {
		return ""
	}
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i+1]
	}
	lang, _ := enry.GetLanguageByShebang([]byte(line))
	if lang == "" {
		return ""
	}
	return fromEnry(lang)
}

// FromContent applies the substring heuristics.
func FromContent(content string) string {
	for _, h := range heuristics {
		if containsAll(content, h.markers) {
			return h.tag
		}
	}
	return ""
}

func containsAll(s string, markers []string) bool {
	for _, m := range markers {
		if !strings.Contains(s, m) {
			return false
		}
	}
	return true
}

func fromEnry(name string) string {
	if tag, ok := enryNames[name]; ok {
		return tag
	}
	return strings.ToLower(name)
}
