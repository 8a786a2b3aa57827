package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteKeywordIndex_IndexAndSearch(t *testing.T) {
	idx, err := NewSQLiteKeywordIndex("", DefaultKeywordConfig())
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	require.NoError(t, idx.Index(ctx, []*Document{
		{ID: "ctx-1", Content: "fixed the password hash bug in auth.ts"},
		{ID: "ctx-2", Content: "updated the README"},
	}))

	results, err := idx.Search(ctx, "auth bug", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "ctx-1", results[0].DocID)
}

func TestSQLiteKeywordIndex_CamelCaseSplits(t *testing.T) {
	idx, err := NewSQLiteKeywordIndex("", DefaultKeywordConfig())
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	require.NoError(t, idx.Index(ctx, []*Document{{ID: "ctx-1", Content: "func getUserById(id string)"}}))

	results, err := idx.Search(ctx, "user id", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, results, "camelCase identifiers should split into searchable words")
}

func TestSQLiteKeywordIndex_DeleteRemovesFromResults(t *testing.T) {
	idx, err := NewSQLiteKeywordIndex("", DefaultKeywordConfig())
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	require.NoError(t, idx.Index(ctx, []*Document{{ID: "ctx-1", Content: "database migration"}}))
	require.NoError(t, idx.Delete(ctx, []string{"ctx-1"}))

	results, err := idx.Search(ctx, "database migration", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSQLiteKeywordIndex_EmptyQueryReturnsEmpty(t *testing.T) {
	idx, err := NewSQLiteKeywordIndex("", DefaultKeywordConfig())
	require.NoError(t, err)
	defer idx.Close()

	results, err := idx.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBleveKeywordIndex_IndexAndSearch(t *testing.T) {
	idx, err := NewBleveKeywordIndex("", DefaultKeywordConfig())
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	require.NoError(t, idx.Index(ctx, []*Document{
		{ID: "ctx-1", Content: "fixed the password hash bug"},
	}))

	results, err := idx.Search(ctx, "password bug", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "ctx-1", results[0].DocID)
}

func TestNewKeywordIndexWithBackend_UnknownBackendErrors(t *testing.T) {
	_, err := NewKeywordIndexWithBackend("", DefaultKeywordConfig(), "not-a-backend")
	assert.Error(t, err)
}

func TestNewKeywordIndexWithBackend_DefaultsToSQLite(t *testing.T) {
	idx, err := NewKeywordIndexWithBackend("", DefaultKeywordConfig(), "")
	require.NoError(t, err)
	defer idx.Close()

	_, ok := idx.(*SQLiteKeywordIndex)
	assert.True(t, ok)
}
