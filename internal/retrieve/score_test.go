package retrieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalScore_ClampsMetadataContributionAtOne(t *testing.T) {
	// Four overlapping tags alone push TagMatch to 8; add a file and
	// project match and metadata.Total clears metadataScoreMax (20).
	metadata := MetadataScore{
		FileMatch:    5,
		ProjectMatch: 3,
		TagMatch:     8,
		TimeWeight:   10,
	}
	metadata.Total = metadata.FileMatch + metadata.ProjectMatch + metadata.TagMatch + metadata.TimeWeight
	assert.Greater(t, metadata.Total, metadataScoreMax)

	got := finalScore(1.0, metadata)
	assert.LessOrEqual(t, got, 1.0)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestFinalScore_BlendsWithinBoundWhenMetadataUnderCap(t *testing.T) {
	metadata := MetadataScore{FileMatch: 5, TimeWeight: 5, Total: 10}
	got := finalScore(0.5, metadata)
	want := 0.7*0.5 + 0.3*(10.0/metadataScoreMax)
	assert.InDelta(t, want, got, 1e-9)
}
