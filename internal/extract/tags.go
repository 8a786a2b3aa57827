package extract

import (
	"regexp"
	"strings"
)

// pathHintTags are path segments that, when present anywhere in a file's
// path, are promoted directly to tags: they describe the file's role in an
// architecture regardless of language.
var pathHintTags = []string{
	"api", "component", "components", "service", "services", "controller",
	"controllers", "model", "models", "handler", "handlers", "middleware",
	"repository", "repositories", "util", "utils", "helper", "helpers",
	"config", "test", "tests", "migration", "migrations", "schema",
	"route", "routes", "store", "hook", "hooks", "worker", "workers",
	"client", "server", "auth", "db", "cache", "queue",
}

var wordRegexp = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_]{2,}`)

// stopWords are excluded from keyword-derived tags: too common to signal
// anything about a context's subject matter.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"with": true, "from": true, "have": true, "has": true, "was": true,
	"were": true, "are": true, "not": true, "but": true, "you": true,
	"your": true, "will": true, "can": true, "into": true, "then": true,
	"than": true, "when": true, "what": true, "which": true, "return": true,
	"function": true, "const": true, "let": true, "var": true,
}

const maxTags = 10

// deriveTags builds a tag set from the language, path hints and content
// keywords. Order is deterministic: the language first, then path hints
// (most reliable), then content keywords by descending frequency, capped at
// maxTags.
func deriveTags(content, path, language string) []string {
	seen := make(map[string]bool)
	var tags []string

	add := func(tag string) {
		tag = strings.ToLower(tag)
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	if language != "" {
		add(language)
	}

	if path != "" {
		lowerPath := strings.ToLower(path)
		segments := strings.FieldsFunc(lowerPath, func(r rune) bool {
			return r == '/' || r == '\\' || r == '_' || r == '-' || r == '.'
		})
		segSet := make(map[string]bool, len(segments))
		for _, s := range segments {
			segSet[s] = true
		}
		for _, hint := range pathHintTags {
			if segSet[hint] {
				add(hint)
			}
		}
	}

	for _, word := range topKeywords(content, maxTags) {
		if len(tags) >= maxTags {
			break
		}
		add(word)
	}

	return tags
}

// topKeywords counts word frequency over content and returns up to n words,
// longest-and-most-frequent first, excluding stop words and anything
// shorter than 3 characters.
func topKeywords(content string, n int) []string {
	counts := make(map[string]int)
	for _, match := range wordRegexp.FindAllString(content, -1) {
		word := strings.ToLower(match)
		if stopWords[word] {
			continue
		}
		counts[word]++
	}

	type pair struct {
		word  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for w, c := range counts {
		if c < 2 {
			continue
		}
		pairs = append(pairs, pair{w, c})
	}
	// simple selection sort over a small candidate set is fine here; tag
	// derivation runs once per recorded context, not in a hot loop.
	for i := 0; i < len(pairs); i++ {
		best := i
		for j := i + 1; j < len(pairs); j++ {
			pj, pb := pairs[j], pairs[best]
			if pj.count > pb.count ||
				(pj.count == pb.count && (len(pj.word) > len(pb.word) ||
					(len(pj.word) == len(pb.word) && pj.word < pb.word))) {
				best = j
			}
		}
		pairs[i], pairs[best] = pairs[best], pairs[i]
	}

	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.word
	}
	return out
}
