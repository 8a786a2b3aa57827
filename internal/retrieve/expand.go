package retrieve

import (
	"strings"
	"unicode"
)

// QueryExpander broadens a search query with code-aware synonyms so a
// caller's natural-language vocabulary reaches identifiers that never
// share its surface form. Terms are deduplicated case-insensitively, so
// a casing variant of a term already in the query is not added.
type QueryExpander struct {
	synonyms      map[string][]string
	maxExpansions int
	includeCasing bool
}

// NewQueryExpander creates a QueryExpander seeded with codeSynonyms.
func NewQueryExpander() *QueryExpander {
	e := &QueryExpander{
		synonyms:      make(map[string][]string, len(codeSynonyms)),
		maxExpansions: 3,
		includeCasing: true,
	}
	for k, v := range codeSynonyms {
		e.synonyms[k] = v
	}
	return e
}

// Expand appends synonym terms to query, keeping the original terms
// first so exact matches are never diluted. Casing variants pass through
// the same case-insensitive dedup as every other term, so one that only
// differs in case from a query term is dropped.
func (e *QueryExpander) Expand(query string) string {
	terms := tokenize(query)
	if len(terms) == 0 {
		return query
	}

	seen := make(map[string]bool)
	var expanded []string

	for _, term := range terms {
		lower := strings.ToLower(term)
		if !seen[lower] {
			expanded = append(expanded, term)
			seen[lower] = true
		}
	}

	for _, term := range terms {
		lower := strings.ToLower(term)
		added := 0
		for _, syn := range e.synonyms[lower] {
			lowerSyn := strings.ToLower(syn)
			if !seen[lowerSyn] && added < e.maxExpansions {
				expanded = append(expanded, syn)
				seen[lowerSyn] = true
				added++
			}
		}
	}

	if e.includeCasing {
		for _, term := range terms {
			for _, v := range casingVariants(term) {
				lowerV := strings.ToLower(v)
				if !seen[lowerV] {
					expanded = append(expanded, v)
					seen[lowerV] = true
				}
			}
		}
	}

	return strings.Join(expanded, " ")
}

// tokenize splits query on whitespace/punctuation, then further on
// camelCase and snake_case boundaries within each token.
func tokenize(query string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	var result []string
	for _, token := range tokens {
		result = append(result, splitCamelSnake(token)...)
	}
	return result
}

// splitCamelSnake splits one token on snake_case or camelCase
// boundaries, keeping each part's case, e.g. "search_function" →
// [search function] and "searchFunction" → [search Function].
func splitCamelSnake(token string) []string {
	if strings.Contains(token, "_") {
		var result []string
		for _, p := range strings.Split(token, "_") {
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}

	var parts []string
	var current strings.Builder
	for i, r := range token {
		if i > 0 && unicode.IsUpper(r) && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// casingVariants proposes alternate Go-idiomatic casings for term, for
// matching a query word against an identifier spelled differently.
func casingVariants(term string) []string {
	if term == "" {
		return nil
	}
	lower := strings.ToLower(term)
	upper := strings.ToUpper(term)
	title := strings.ToUpper(term[:1]) + lower[1:]

	var variants []string
	if term != lower {
		variants = append(variants, lower)
	}
	if term != upper && len(term) <= 4 {
		variants = append(variants, upper)
	}
	if term != title {
		variants = append(variants, title)
	}
	return variants
}
