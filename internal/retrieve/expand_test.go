package retrieve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand_AddsSynonyms(t *testing.T) {
	e := NewQueryExpander()
	expanded := e.Expand("search function")
	assert.Contains(t, expanded, "search")
	assert.Contains(t, expanded, "function")
	assert.Contains(t, expanded, "func")
}

func TestExpand_SplitsCamelCase(t *testing.T) {
	e := NewQueryExpander()
	expanded := e.Expand("searchFunction")
	assert.Contains(t, expanded, "search")
	assert.Contains(t, expanded, "Function")
}

func TestExpand_EmptyQueryUnchanged(t *testing.T) {
	e := NewQueryExpander()
	assert.Equal(t, "", e.Expand(""))
}

func TestExpand_NoDuplicateTerms(t *testing.T) {
	e := NewQueryExpander()
	expanded := e.Expand("error err")
	tokens := tokenize(expanded)
	seen := map[string]bool{}
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		assert.False(t, seen[lower], "duplicate token %q in expansion", tok)
		seen[lower] = true
	}
}
