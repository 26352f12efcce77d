package search

import (
	"strings"

	"github.com/tutorhub/tutorhub/pkg/models"
)

// Content length thresholds for the quality heuristic: long content is
// assumed high quality, short content low.
const (
	highQualityMinLength   = 2000
	mediumQualityMinLength = 500
)

// AssessQuality derives a quality level from content length.
func AssessQuality(content string) models.Quality {
	switch {
	case len(content) >= highQualityMinLength:
		return models.QualityHigh
	case len(content) >= mediumQualityMinLength:
		return models.QualityMedium
	default:
		return models.QualityLow
	}
}

// Fixed vocabularies for tag extraction. The platform teaches both
// programming and general school subjects.
var languageVocabulary = []string{
	"python", "javascript", "typescript", "java", "golang", "rust",
	"c++", "sql", "html", "css",
}

var topicVocabulary = []string{
	"algebra", "geometry", "calculus", "fractions", "equations",
	"grammar", "vocabulary", "reading", "writing",
	"science", "physics", "chemistry", "biology", "history",
	"programming", "loops", "functions", "variables", "arrays", "recursion",
}

// ExtractTags matches content against the language and topic
// vocabularies, case-insensitively.
func ExtractTags(content string) []string {
	lowered := strings.ToLower(content)

	var tags []string
	for _, vocab := range [][]string{languageVocabulary, topicVocabulary} {
		for _, keyword := range vocab {
			if strings.Contains(lowered, keyword) {
				tags = append(tags, keyword)
			}
		}
	}
	return tags
}

// mergeTags combines supplied and extracted tags, deduplicating
// case-insensitively while preserving order.
func mergeTags(supplied, extracted []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, t := range append(append([]string{}, supplied...), extracted...) {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, t)
	}
	return merged
}
