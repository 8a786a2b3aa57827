package ingest

import (
	"context"
	"path/filepath"
	"regexp"

	"github.com/devmind-dev/memcore/internal/store"
)

// pathTokenPattern pulls file-path-shaped substrings out of free text:
// a run of path characters ending in a dotted extension.
var pathTokenPattern = regexp.MustCompile(`[\w./\\-]+\.[A-Za-z0-9]{1,8}\b`)

// fileInferenceConfidence is the score assigned to an exact path match;
// a basename-only match scores basenameInferenceConfidence.
const (
	fileInferenceConfidence     = 1.0
	basenameInferenceConfidence = 0.65
	minInferenceConfidence      = 0.6
	maxInferredFiles            = 5
	recentContextWindow         = 10
)

// inferFilesChanged guesses which files a file-path-less context touched
// by matching path-shaped tokens in its content against files named in
// the session's most recent contexts. It only promotes a guess when the
// best match clears minInferenceConfidence and at least one other match
// does too, since a single coincidental hit is too weak to act on.
func inferFilesChanged(ctx context.Context, st store.Store, sessionID, content string) []FileChange {
	tokens := pathTokenPattern.FindAllString(content, -1)
	if len(tokens) == 0 {
		return nil
	}

	recent, err := st.ContextsBySession(ctx, sessionID, recentContextWindow)
	if err != nil || len(recent) == 0 {
		return nil
	}

	known := map[string]bool{}
	for _, c := range recent {
		if c.FilePath != "" {
			known[c.FilePath] = true
		}
		files, err := st.ContextFilesByContext(ctx, c.ID)
		if err != nil {
			continue
		}
		for _, f := range files {
			known[f.FilePath] = true
		}
	}
	if len(known) == 0 {
		return nil
	}

	type match struct {
		path       string
		confidence float64
	}
	var matches []match
	for knownPath := range known {
		for _, token := range tokens {
			if token == knownPath {
				matches = append(matches, match{knownPath, fileInferenceConfidence})
				break
			}
			if filepath.Base(token) == filepath.Base(knownPath) {
				matches = append(matches, match{knownPath, basenameInferenceConfidence})
				break
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}

	best := matches[0]
	highConfidence := 0
	for _, m := range matches {
		if m.confidence > best.confidence {
			best = m
		}
		if m.confidence > minInferenceConfidence {
			highConfidence++
		}
	}
	if best.confidence <= minInferenceConfidence || highConfidence < 2 {
		return nil
	}

	seen := map[string]bool{}
	var out []FileChange
	for _, m := range matches {
		if m.confidence <= minInferenceConfidence || seen[m.path] {
			continue
		}
		seen[m.path] = true
		out = append(out, FileChange{FilePath: m.path, ChangeType: store.ChangeTypeModify})
		if len(out) >= maxInferredFiles {
			break
		}
	}
	return out
}
