// Package ingest implements the record_context pipeline: validating
// caller input, resolving project/session identity, enriching with Git
// and project metadata, classifying untyped content, writing the
// context and its file associations, and spawning the fire-and-forget
// embedding task.
package ingest

import (
	"github.com/devmind-dev/memcore/internal/store"
)

// FileChange is one entry of a caller-supplied files_changed list.
type FileChange struct {
	FilePath   string
	ChangeType store.ChangeType
	LineRanges []store.LineRange
	DiffStats  *store.DiffStats
}

// Request is the record_context input.
type Request struct {
	Content     string
	ProjectPath string

	SessionID string
	Type      string

	FilePath     string
	FilesChanged []FileChange
	LineRanges   []store.LineRange

	Tags     []string
	Metadata map[string]any

	ChangeType  string
	ImpactLevel string

	RelatedFiles []string
	Priority     string
	DiffStats    *store.DiffStats

	ForceRemember bool
}

// Tier is the lossy work filter's verdict for a given context type.
type Tier string

const (
	TierSilent Tier = "silent"
	TierNotify Tier = "notify"
	TierSkip   Tier = "skip"
)

// Response is the record_context output.
type Response struct {
	ContextID        string
	Tier             Tier
	Stored           bool
	DuplicateWarning string
	Message          string
	Files            []string
}
