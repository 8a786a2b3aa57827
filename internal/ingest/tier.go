package ingest

import "github.com/devmind-dev/memcore/internal/store"

// silentTypes record without notifying the caller's user: the bulk of
// routine code and housekeeping activity.
var silentTypes = map[store.ContextType]bool{
	store.ContextTypeCodeCreate:    true,
	store.ContextTypeCodeModify:    true,
	store.ContextTypeCodeDelete:    true,
	store.ContextTypeCodeRefactor:  true,
	store.ContextTypeCodeOptimize:  true,
	store.ContextTypeBugFix:        true,
	store.ContextTypeBugReport:     true,
	store.ContextTypeFeatureAdd:    true,
	store.ContextTypeFeatureUpdate: true,
	store.ContextTypeFeatureRemove: true,
	store.ContextTypeTest:          true,
	store.ContextTypeCommit:        true,
	store.ContextTypeConfiguration: true,
}

// notifyTypes record and surface a context id hint: material enough
// that a caller likely wants to know it was kept.
var notifyTypes = map[store.ContextType]bool{
	store.ContextTypeSolution:      true,
	store.ContextTypeDesign:        true,
	store.ContextTypeDocumentation: true,
	store.ContextTypeLearning:      true,
}

// classifyTier decides whether t is recorded silently, recorded with a
// notification, or skipped outright (conversation/error noise, unless
// the caller forced it to be remembered).
func classifyTier(t store.ContextType, forceRemember bool) Tier {
	if silentTypes[t] {
		return TierSilent
	}
	if notifyTypes[t] {
		return TierNotify
	}
	// conversation, error, and anything unrecognized: skip unless forced.
	if forceRemember {
		return TierNotify
	}
	return TierSkip
}
