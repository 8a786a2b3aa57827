package extract

import "strings"

// Quality scoring rewards specificity: content that names a location, has
// recognizable structure (symbols, multiple lines), and isn't a trivial
// one-liner or an empty placeholder scores higher than vague prose.
const (
	qualityBaseline     = 0.3
	qualityPerSymbol    = 0.05
	qualityMaxSymbolAdd = 0.25
	qualityHasLanguage  = 0.15
	qualityHasLineRange = 0.1
	qualityLengthBand   = 0.2
)

// scoreQuality derives an auto quality score in [0,1] from content length,
// detected language, line-range specificity, and symbol density. It never
// inspects anything outside the four extractor inputs.
func scoreQuality(content, language string, lineStart, lineEnd *int, symbolCount int) float64 {
	score := qualityBaseline

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}

	score += lengthScore(trimmed) * qualityLengthBand

	if language != "" {
		score += qualityHasLanguage
	}

	if lineStart != nil && lineEnd != nil && *lineEnd >= *lineStart {
		score += qualityHasLineRange
	}

	symbolAdd := float64(symbolCount) * qualityPerSymbol
	if symbolAdd > qualityMaxSymbolAdd {
		symbolAdd = qualityMaxSymbolAdd
	}
	score += symbolAdd

	return clamp01(score)
}

// lengthScore returns a value in [0,1]: very short content (under ~20
// chars) scores near zero, content in a healthy 80-4000 char range scores
// near 1, and extremely long content tapers back down since a multi-file
// dump is rarely a precise memory.
func lengthScore(trimmed string) float64 {
	n := len(trimmed)
	switch {
	case n < 20:
		return float64(n) / 20.0 * 0.3
	case n < 80:
		return 0.3 + (float64(n-20)/60.0)*0.4
	case n <= 4000:
		return 1.0
	case n <= 20000:
		return 1.0 - (float64(n-4000)/16000.0)*0.4
	default:
		return 0.6
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
