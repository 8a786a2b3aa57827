package extract

import "regexp"

// symbolPatterns extracts probable function/class/type names per language
// family. These are heuristics, not parsers: good enough to populate a
// metadata hint, not to drive anything load-bearing.
var symbolPatterns = map[string][]*regexp.Regexp{
	"go": {
		regexp.MustCompile(`(?m)^func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
		regexp.MustCompile(`(?m)^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+(?:struct|interface)\b`),
	},
	"python": {
		regexp.MustCompile(`(?m)^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
		regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)`),
	},
	"javascript": {
		regexp.MustCompile(`(?m)\bfunction\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`),
		regexp.MustCompile(`(?m)\bclass\s+([A-Za-z_$][A-Za-z0-9_$]*)`),
		regexp.MustCompile(`(?m)\bconst\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(?:async\s*)?\(`),
	},
	"typescript": {
		regexp.MustCompile(`(?m)\bfunction\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`),
		regexp.MustCompile(`(?m)\bclass\s+([A-Za-z_$][A-Za-z0-9_$]*)`),
		regexp.MustCompile(`(?m)\binterface\s+([A-Za-z_$][A-Za-z0-9_$]*)`),
	},
	"java": {
		regexp.MustCompile(`(?m)\b(?:public|private|protected)\s+(?:static\s+)?(?:[\w<>\[\]]+\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
		regexp.MustCompile(`(?m)\bclass\s+([A-Za-z_][A-Za-z0-9_]*)`),
	},
	"rust": {
		regexp.MustCompile(`(?m)\bfn\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(<]`),
		regexp.MustCompile(`(?m)\bstruct\s+([A-Za-z_][A-Za-z0-9_]*)`),
	},
}

// genericSymbolPattern is the fallback for languages with no dedicated
// pattern above: looks for the common "def/func/function/class Name" shape.
var genericSymbolPattern = regexp.MustCompile(`(?m)\b(?:def|func|function|class)\s+([A-Za-z_][A-Za-z0-9_]*)`)

const maxSymbols = 20

// extractSymbols returns the distinct identifiers a regex sweep recognizes
// as function or class names, in first-seen order, capped at maxSymbols.
func extractSymbols(content, language string) []string {
	patterns := symbolPatterns[language]
	if len(patterns) == 0 {
		patterns = []*regexp.Regexp{genericSymbolPattern}
	}

	seen := make(map[string]bool)
	var symbols []string
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			if len(match) < 2 {
				continue
			}
			name := match[1]
			if seen[name] {
				continue
			}
			seen[name] = true
			symbols = append(symbols, name)
			if len(symbols) >= maxSymbols {
				return symbols
			}
		}
	}
	return symbols
}
