package extract

// Result is everything the extractor can derive from a piece of content
// without touching the filesystem.
type Result struct {
	Language     string
	Tags         []string
	QualityScore float64
	Metadata     map[string]any
}

// Extract derives language, tags, a quality score, and affected-symbol
// metadata from content and its (optional) path and line range. It is pure
// and synchronous: safe to call on the hot path of both record_context and
// list_contexts previewing.
func Extract(content string, path string, lineStart, lineEnd *int) Result {
	language := detectLanguage(content, path)
	symbols := extractSymbols(content, language)
	tags := deriveTags(content, path, language)
	score := scoreQuality(content, language, lineStart, lineEnd, len(symbols))

	metadata := map[string]any{}
	if len(symbols) > 0 {
		metadata["symbols"] = symbols
	}
	if path != "" {
		metadata["path_hint"] = baseName(path)
	}

	return Result{
		Language:     language,
		Tags:         tags,
		QualityScore: score,
		Metadata:     metadata,
	}
}

// chineseThreshold is the fraction of Han-script codepoints above which
// response text is composed in Chinese instead of English.
const chineseThreshold = 0.3

// IsPredominantlyChinese reports whether more than chineseThreshold of
// content's runes, not counting whitespace and common ASCII punctuation,
// fall in the CJK Unified Ideographs block, the signal the ingestion
// pipeline uses to pick a response language.
func IsPredominantlyChinese(content string) bool {
	total := 0
	han := 0
	for _, r := range content {
		if isSpaceOrPunct(r) {
			continue
		}
		total++
		if isHan(r) {
			han++
		}
	}
	if total == 0 {
		return false
	}
	return float64(han)/float64(total) > chineseThreshold
}

func isHan(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

func isSpaceOrPunct(r rune) bool {
	switch {
	case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= '!' && r <= '/':
		return true
	case r >= ':' && r <= '@':
		return true
	}
	return false
}
