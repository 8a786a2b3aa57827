package resolve

import (
	"context"
	"os"
	"path/filepath"

	"github.com/devmind-dev/memcore/internal/extract"
	"github.com/devmind-dev/memcore/internal/store"
)

// histogramFileCap bounds how many files get_or_create_project inspects
// when inferring a new project's primary language: enough for an accurate
// histogram on a typical repo, bounded so a caller pointing this at a huge
// monorepo doesn't stall project creation.
const histogramFileCap = 2000

// skipDirs are never descended into when building the language histogram:
// dependency trees and VCS metadata would otherwise swamp the count.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, ".venv": true,
	"venv": true, "__pycache__": true, "dist": true, "build": true,
	"target": true, ".idea": true, ".vscode": true,
}

// Resolver resolves a caller-supplied path into the project/session
// identities the rest of the core operates on.
type Resolver struct {
	store store.Store
}

// New creates a Resolver over store.
func New(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// GetOrCreateProject canonicalizes path, looks it up, and if absent infers
// a name from the basename and a primary language from a file-extension
// histogram before inserting.
func (r *Resolver) GetOrCreateProject(ctx context.Context, path string) (*store.Project, error) {
	canonical, err := Canonicalize(path)
	if err != nil {
		return nil, err
	}

	if existing, err := r.store.GetProjectByPath(ctx, canonical); err == nil && existing != nil {
		return existing, nil
	}

	name := filepath.Base(canonical)
	language := r.detectPrimaryLanguage(canonical)

	return r.store.GetOrCreateProject(ctx, name, canonical, language, "")
}

// detectPrimaryLanguage walks dir up to histogramFileCap files and returns
// the language with the most matching files, or "" if none recognized.
func (r *Resolver) detectPrimaryLanguage(dir string) string {
	counts := make(map[string]int)
	visited := 0

	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if visited >= histogramFileCap {
			return filepath.SkipAll
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		visited++
		if lang := extract.LanguageForPath(path); lang != "" {
			counts[lang]++
		}
		return nil
	})

	best := ""
	bestCount := 0
	for lang, count := range counts {
		if count > bestCount {
			best, bestCount = lang, count
		}
	}
	return best
}

// GetCurrentSession returns the project's most recently started active
// session, or nil if there isn't one.
func (r *Resolver) GetCurrentSession(ctx context.Context, projectID string) (*store.Session, error) {
	sessions, err := r.store.SessionsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var best *store.Session
	for _, s := range sessions {
		if s.Status != store.SessionStatusActive {
			continue
		}
		if best == nil || s.StartedAt.After(best.StartedAt) {
			best = s
		}
	}
	return best, nil
}

// MainSession returns the project's earliest session, reactivating it if
// it had ended, so a project never accumulates more than one main session.
func (r *Resolver) MainSession(ctx context.Context, projectID string) (*store.Session, error) {
	return r.store.GetMainSession(ctx, projectID)
}

// EnsureSession resolves the project's session for an ingest call: the
// given sessionID if one was supplied, else the current active session,
// else the project's main session (reactivated if it had ended), else a
// freshly created "<basename> - Main Session" for a project with none at
// all. This keeps a project down to at most one main session rather than
// minting a new one on every call with no active session.
func (r *Resolver) EnsureSession(ctx context.Context, project *store.Project, sessionID string) (*store.Session, error) {
	if sessionID != "" {
		return r.store.GetSession(ctx, sessionID)
	}

	if current, err := r.GetCurrentSession(ctx, project.ID); err == nil && current != nil {
		return current, nil
	}

	main, err := r.MainSession(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if main != nil {
		return main, nil
	}

	name := project.Name + " - Main Session"
	return r.store.CreateSession(ctx, project.ID, name, "", nil)
}
