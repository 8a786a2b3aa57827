package detect

import (
	"context"
	"strings"
)

// GitInfo returns the cached Git state for projectPath, computing it if the
// current 30-second window has no live entry yet. Returns nil if
// projectPath is not inside a Git work tree; every subprocess failure
// degrades to an empty/unknown field rather than propagating an error.
func (d *Detector) GitInfo(ctx context.Context, projectPath string) *GitInfo {
	window := currentWindow()

	d.gitMu.Lock()
	if entry, ok := d.gitCache[projectPath]; ok && entry.window == window {
		d.gitMu.Unlock()
		return entry.info
	}
	d.gitMu.Unlock()

	info := d.computeGitInfo(ctx, projectPath)

	d.gitMu.Lock()
	d.gitCache[projectPath] = gitCacheEntry{window: window, info: info}
	d.gitMu.Unlock()

	return info
}

func (d *Detector) computeGitInfo(ctx context.Context, projectPath string) *GitInfo {
	if !d.isGitRepo(ctx, projectPath) {
		return nil
	}

	info := &GitInfo{
		Branch: "unknown",
		Author: "unknown",
	}

	if branch, ok := d.runGit(ctx, projectPath, "branch", "--show-current"); ok {
		info.Branch = d.resolveBranch(ctx, projectPath, branch)
	} else {
		d.logger.Warn("git branch detection failed", "path", projectPath)
	}

	if author, ok := d.runGit(ctx, projectPath, "config", "user.name"); ok && author != "" {
		info.Author = author
	} else if !ok {
		d.logger.Warn("git author detection failed", "path", projectPath)
	}

	unstaged, unstagedOK := d.runGitLines(ctx, projectPath, "diff", "--name-only", "HEAD")
	if !unstagedOK {
		d.logger.Warn("git diff detection failed", "path", projectPath)
	}
	staged, stagedOK := d.runGitLines(ctx, projectPath, "diff", "--cached", "--name-only")
	if !stagedOK {
		d.logger.Warn("git staged diff detection failed", "path", projectPath)
	}

	info.ChangedFiles = mergeUnique(unstaged, staged)
	info.HasUncommitted = len(info.ChangedFiles) > 0

	return info
}

// resolveBranch returns branch as-is when non-empty, or a detached-HEAD
// marker built from the short commit SHA when branch --show-current
// produced nothing (the state on a detached HEAD).
func (d *Detector) resolveBranch(ctx context.Context, projectPath, branch string) string {
	if branch != "" {
		return branch
	}
	sha, ok := d.runGit(ctx, projectPath, "rev-parse", "--short", "HEAD")
	if !ok || sha == "" {
		return "unknown"
	}
	return "detached@" + sha
}

func (d *Detector) isGitRepo(ctx context.Context, projectPath string) bool {
	out, ok := d.runGit(ctx, projectPath, "rev-parse", "--is-inside-work-tree")
	return ok && strings.TrimSpace(out) == "true"
}

// runGit runs a single git subcommand bounded by subprocessTimeout and
// returns its trimmed stdout. ok is false on any execution failure
// (missing binary, non-zero exit, timeout) — the caller treats that as
// "unknown", never as a reason to abort the wider detection.
func (d *Detector) runGit(ctx context.Context, dir string, args ...string) (string, bool) {
	cctx, cancel := context.WithTimeout(ctx, subprocessTimeout)
	defer cancel()

	cmd := d.execCommand(cctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// runGitLines is like runGit but splits stdout into non-empty lines, the
// shape git diff --name-only produces.
func (d *Detector) runGitLines(ctx context.Context, dir string, args ...string) ([]string, bool) {
	out, ok := d.runGit(ctx, dir, args...)
	if !ok {
		return nil, false
	}
	if out == "" {
		return nil, true
	}
	lines := strings.Split(out, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return result, true
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, item := range list {
			if seen[item] {
				continue
			}
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
