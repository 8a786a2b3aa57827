package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devmind-dev/memcore/internal/store"
)

func TestClassify_BugFix(t *testing.T) {
	c := NewClassifier()
	result := c.Classify("fixed a bug causing the worker to panic on shutdown", false)
	assert.Equal(t, store.ContextTypeBugFix, result.Type)
	assert.Greater(t, result.Confidence, 0.5)
}

func TestClassify_FeatureAdd(t *testing.T) {
	c := NewClassifier()
	result := c.Classify("implemented a new feature to support CSV exports", false)
	assert.Equal(t, store.ContextTypeFeatureAdd, result.Type)
}

func TestClassify_Refactor(t *testing.T) {
	c := NewClassifier()
	result := c.Classify("refactored the dispatcher to remove the switch statement", false)
	assert.Equal(t, store.ContextTypeCodeRefactor, result.Type)
}

func TestClassify_CommitMessageStyle(t *testing.T) {
	c := NewClassifier()
	result := c.Classify("fix: correct off-by-one in pagination", false)
	assert.Equal(t, store.ContextTypeCommit, result.Type)
}

func TestClassify_FallsBackToCodeModifyWhenFilesPresent(t *testing.T) {
	c := NewClassifier()
	result := c.Classify("tweaked the threshold a bit", true)
	assert.Equal(t, store.ContextTypeCodeModify, result.Type)
	assert.Less(t, result.Confidence, 0.6)
}

func TestClassify_FallsBackToConversationWithoutFiles(t *testing.T) {
	c := NewClassifier()
	result := c.Classify("what should we do next", false)
	assert.Equal(t, store.ContextTypeConversation, result.Type)
}

func TestClassify_EmptyContent(t *testing.T) {
	c := NewClassifier()
	result := c.Classify("   ", false)
	assert.Equal(t, 0.0, result.Confidence)
}
