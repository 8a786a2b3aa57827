// Package extract derives language, tags, a quality score, and affected
// symbols from a piece of recorded content. Every function here is pure: no
// file I/O, no network calls, safe to call from both the ingestion path and
// interactive preview (list_contexts).
package extract

import "strings"

// languageByExt maps file extensions and exact filenames to languages,
// mirroring the scanner's extension table for a single file instead of a
// directory walk.
var languageByExt = map[string]string{
	".go": "go",

	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",

	".py":  "python",
	".pyw": "python",
	".pyi": "python",

	".html": "html",
	".htm":  "html",
	".css":  "css",
	".scss": "scss",
	".sass": "sass",
	".less": "less",

	".json":       "json",
	".yaml":       "yaml",
	".yml":        "yaml",
	".toml":       "toml",
	".xml":        "xml",
	".ini":        "ini",
	".conf":       "config",
	".properties": "properties",

	".md":       "markdown",
	".mdx":      "markdown",
	".markdown": "markdown",
	".rst":      "rst",
	".txt":      "text",

	".sh":   "shell",
	".bash": "shell",
	".zsh":  "shell",
	".fish": "fish",

	".rb":   "ruby",
	".rake": "ruby",
	".erb":  "erb",

	".rs": "rust",

	".java": "java",
	".kt":   "kotlin",
	".kts":  "kotlin",

	".c":   "c",
	".h":   "c",
	".cpp": "cpp",
	".hpp": "cpp",
	".cc":  "cpp",
	".cxx": "cpp",

	".cs": "csharp",

	".swift": "swift",
	".php":   "php",
	".scala": "scala",

	".ex":  "elixir",
	".exs": "elixir",
	".erl": "erlang",
	".hs":  "haskell",
	".lua": "lua",
	".r":   "r",

	".sql": "sql",

	"Dockerfile":  "dockerfile",
	"Makefile":    "makefile",
	"makefile":    "makefile",
	"GNUmakefile": "makefile",

	".vue":    "vue",
	".svelte": "svelte",
	".graphql": "graphql",
	".gql":    "graphql",
	".proto":  "protobuf",
}

// shebangLanguage maps interpreter names found on a first-line shebang to a
// language, used when path is absent or has no recognized extension.
var shebangLanguage = map[string]string{
	"python":  "python",
	"python3": "python",
	"node":    "javascript",
	"bash":    "shell",
	"sh":      "shell",
	"zsh":     "shell",
	"ruby":    "ruby",
	"perl":    "perl",
}

// contentKeyword pairs a heuristic keyword or pattern with the language it
// implies, checked in order when path-based detection fails.
var contentKeywords = []struct {
	needle   string
	language string
}{
	{"package main", "go"},
	{"func main(", "go"},
	{"import (", "go"},
	{"def __init__", "python"},
	{"import numpy", "python"},
	{"from typing import", "python"},
	{"interface ", "typescript"},
	{"export default", "javascript"},
	{"console.log", "javascript"},
	{"fn main(", "rust"},
	{"public static void main", "java"},
	{"#include <", "cpp"},
	{"<?php", "php"},
	{"SELECT ", "sql"},
	{"CREATE TABLE", "sql"},
}

// detectLanguage derives a language from path first, falling back to
// shebang and keyword heuristics over content when path gives nothing.
func detectLanguage(content, path string) string {
	if path != "" {
		base := baseName(path)
		if lang, ok := languageByExt[base]; ok {
			return lang
		}
		if ext := extOf(path); ext != "" {
			if lang, ok := languageByExt[ext]; ok {
				return lang
			}
		}
	}

	if lang := detectShebang(content); lang != "" {
		return lang
	}

	lower := strings.ToLower(content)
	for _, kw := range contentKeywords {
		if strings.Contains(lower, strings.ToLower(kw.needle)) {
			return kw.language
		}
	}

	return ""
}

// LanguageForPath returns the language implied by path's filename or
// extension alone, or "" if unrecognized. Exported for callers that need
// extension-based detection without a content sample, such as a project's
// file-extension histogram during project creation.
func LanguageForPath(path string) string {
	base := baseName(path)
	if lang, ok := languageByExt[base]; ok {
		return lang
	}
	if ext := extOf(path); ext != "" {
		return languageByExt[ext]
	}
	return ""
}

func detectShebang(content string) string {
	if !strings.HasPrefix(content, "#!") {
		return ""
	}
	end := strings.IndexByte(content, '\n')
	if end < 0 {
		end = len(content)
	}
	line := content[2:end]
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	interpreter := baseName(fields[len(fields)-1])
	return shebangLanguage[interpreter]
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func extOf(path string) string {
	base := baseName(path)
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[i:]
		}
	}
	return ""
}
