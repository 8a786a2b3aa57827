package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_DetectsLanguageFromExtension(t *testing.T) {
	result := Extract("func Add(a, b int) int { return a + b }", "internal/math/add.go", nil, nil)
	assert.Equal(t, "go", result.Language)
}

func TestLanguageForPath_KnownAndUnknown(t *testing.T) {
	assert.Equal(t, "python", LanguageForPath("scripts/build.py"))
	assert.Equal(t, "makefile", LanguageForPath("Makefile"))
	assert.Equal(t, "", LanguageForPath("README"))
}

func TestExtract_DetectsLanguageFromShebangWhenNoPath(t *testing.T) {
	content := "#!/usr/bin/env python3\nimport sys\nprint(sys.argv)\n"
	result := Extract(content, "", nil, nil)
	assert.Equal(t, "python", result.Language)
}

func TestExtract_DetectsLanguageFromContentKeywordsWhenNoPath(t *testing.T) {
	content := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	result := Extract(content, "", nil, nil)
	assert.Equal(t, "go", result.Language)
}

func TestExtract_PathHintsBecomeTags(t *testing.T) {
	result := Extract("export function handler(req) { return req }", "src/api/handlers/users.ts", nil, nil)
	assert.Contains(t, result.Tags, "api")
	assert.Contains(t, result.Tags, "handlers")
}

func TestExtract_SymbolsCapturedInMetadata(t *testing.T) {
	content := `func ParseConfig(path string) (*Config, error) {
	return nil, nil
}

func ValidateConfig(c *Config) error {
	return nil
}
`
	result := Extract(content, "config.go", nil, nil)
	symbols, ok := result.Metadata["symbols"].([]string)
	require := assert.New(t)
	require.True(ok)
	require.Contains(symbols, "ParseConfig")
	require.Contains(symbols, "ValidateConfig")
}

func TestExtract_EmptyContent_ZeroQuality(t *testing.T) {
	result := Extract("   ", "", nil, nil)
	assert.Equal(t, 0.0, result.QualityScore)
}

func TestExtract_QualityScore_AlwaysInRange(t *testing.T) {
	inputs := []string{
		"x",
		"a reasonably detailed explanation of why the bug happens and how it was fixed",
		string(make([]byte, 50000)),
	}
	for _, content := range inputs {
		result := Extract(content, "", nil, nil)
		assert.GreaterOrEqual(t, result.QualityScore, 0.0)
		assert.LessOrEqual(t, result.QualityScore, 1.0)
	}
}

func TestExtract_LineRangeRaisesQualityScore(t *testing.T) {
	content := "the fix touches the retry loop's backoff calculation"
	start, end := 10, 14
	withRange := Extract(content, "", &start, &end)
	withoutRange := Extract(content, "", nil, nil)
	assert.Greater(t, withRange.QualityScore, withoutRange.QualityScore)
}

func TestExtract_NoPath_NoPathHint(t *testing.T) {
	result := Extract("some text", "", nil, nil)
	_, ok := result.Metadata["path_hint"]
	assert.False(t, ok)
}

func TestIsPredominantlyChinese_MostlyHan(t *testing.T) {
	assert.True(t, IsPredominantlyChinese("这是一个关于修复数据库连接池泄漏问题的说明"))
}

func TestIsPredominantlyChinese_MostlyEnglish(t *testing.T) {
	assert.False(t, IsPredominantlyChinese("this change fixes a connection pool leak in the database layer"))
}

func TestIsPredominantlyChinese_Empty(t *testing.T) {
	assert.False(t, IsPredominantlyChinese(""))
}

func TestIsPredominantlyChinese_MixedBelowThreshold(t *testing.T) {
	// A handful of Han characters inside a long English sentence should
	// stay under the 30% threshold.
	assert.False(t, IsPredominantlyChinese("renamed the 函数 but kept the rest of this long english explanation unchanged so the ratio of han codepoints stays low"))
}
