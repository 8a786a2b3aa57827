package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devmind-dev/memcore/internal/store"
)

func TestClassifyTier_SilentTypes(t *testing.T) {
	assert.Equal(t, TierSilent, classifyTier(store.ContextTypeCodeModify, false))
	assert.Equal(t, TierSilent, classifyTier(store.ContextTypeBugFix, false))
	assert.Equal(t, TierSilent, classifyTier(store.ContextTypeCommit, false))
}

func TestClassifyTier_NotifyTypes(t *testing.T) {
	assert.Equal(t, TierNotify, classifyTier(store.ContextTypeSolution, false))
	assert.Equal(t, TierNotify, classifyTier(store.ContextTypeDesign, false))
	assert.Equal(t, TierNotify, classifyTier(store.ContextTypeLearning, false))
}

func TestClassifyTier_SkipsConversationAndErrorByDefault(t *testing.T) {
	assert.Equal(t, TierSkip, classifyTier(store.ContextTypeConversation, false))
	assert.Equal(t, TierSkip, classifyTier(store.ContextTypeError, false))
}

func TestClassifyTier_ForceRememberOverridesSkip(t *testing.T) {
	assert.Equal(t, TierNotify, classifyTier(store.ContextTypeConversation, true))
	assert.Equal(t, TierNotify, classifyTier(store.ContextTypeError, true))
}
