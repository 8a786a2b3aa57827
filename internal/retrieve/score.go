package retrieve

import (
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/devmind-dev/memcore/internal/store"
)

// queryPathPattern lexes file-path-shaped tokens out of a query so the
// file-match metadata score can compare them against a row's files.
var queryPathPattern = regexp.MustCompile(`[\w./\\-]+\.[A-Za-z0-9]{1,8}\b`)

// metadataScoreMax is the denominator final score normalizes
// metadata_total against.
const metadataScoreMax = 20.0

func lexQueryPaths(query string) []string {
	return queryPathPattern.FindAllString(query, -1)
}

// fileMatches reports whether any of queryPaths matches any of
// candidateFiles by exact match, basename match, or substring
// containment, in that preference order.
func fileMatches(queryPaths, candidateFiles []string) bool {
	for _, q := range queryPaths {
		for _, f := range candidateFiles {
			if f == "" {
				continue
			}
			if q == f {
				return true
			}
			if filepath.Base(q) == filepath.Base(f) {
				return true
			}
			if strings.Contains(f, q) || strings.Contains(q, f) {
				return true
			}
		}
	}
	return false
}

func tagOverlap(queryTags, candidateTags []string) int {
	set := make(map[string]bool, len(candidateTags))
	for _, t := range candidateTags {
		set[strings.ToLower(t)] = true
	}
	count := 0
	for _, t := range queryTags {
		if set[strings.ToLower(t)] {
			count++
		}
	}
	return count
}

func timeWeight(createdAt time.Time, now time.Time) float64 {
	days := now.Sub(createdAt).Hours() / 24
	weight := 10 - days
	if weight < 0 {
		return 0
	}
	return weight
}

// scoreMetadata computes the out-of-20 metadata relevance breakdown for
// cand against the query's lexed paths, scope project, and tag tokens.
func scoreMetadata(cand candidate, queryPaths []string, queryTags []string, projectPath string, now time.Time) MetadataScore {
	var score MetadataScore

	candidateFiles := cand.files
	if cand.filePath != "" {
		candidateFiles = append(append([]string{}, candidateFiles...), cand.filePath)
	}
	if len(queryPaths) > 0 && fileMatches(queryPaths, candidateFiles) {
		score.FileMatch = 5
	}

	if projectPath != "" {
		if p, ok := cand.metadata["project_path"].(string); ok && p == projectPath {
			score.ProjectMatch = 3
		}
	}

	score.TagMatch = float64(2 * tagOverlap(queryTags, cand.tags))

	score.TimeWeight = timeWeight(cand.createdAt, now)

	score.Total = score.FileMatch + score.ProjectMatch + score.TagMatch + score.TimeWeight
	return score
}

// hybridScore blends vector similarity and a binary keyword hit.
func hybridScore(similarity, keywordScore, hybridWeight float64) float64 {
	return hybridWeight*similarity + (1-hybridWeight)*keywordScore
}

// finalScore blends the hybrid score with the normalized metadata score.
// TagMatch is unbounded (2 per overlapping tag), so metadata.Total can
// exceed metadataScoreMax; clamp its contribution to 1 before blending.
func finalScore(hybrid float64, metadata MetadataScore) float64 {
	return 0.7*hybrid + 0.3*math.Min(metadata.Total/metadataScoreMax, 1)
}

func candidateSimilarity(queryVec []float32, cand candidate) float64 {
	if len(cand.embedding) == 0 || len(queryVec) == 0 {
		return 0
	}
	return float64(store.DotProduct(store.Normalize(queryVec), store.Normalize(cand.embedding)))
}
