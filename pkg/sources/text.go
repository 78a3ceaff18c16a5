package sources

import (
	"regexp"
	"strings"
)

// Legacy category prefix still present on old 311 taxonomy entries.
var legacyPrefix = regexp.MustCompile(`(?i)^ZZ\s*-\s*OLD\s*[-:]?\s*`)

// StripLegacyPrefix removes a leading "ZZ - OLD" marker (case-insensitive,
// optional separating hyphen or colon) from a category or title. If
// stripping leaves nothing, the original trimmed text is returned instead.
func StripLegacyPrefix(text string) string {
	stripped := strings.TrimSpace(legacyPrefix.ReplaceAllString(text, ""))
	if stripped == "" {
		return strings.TrimSpace(text)
	}
	return stripped
}

// normalizeStatus uppercases and trims a feed status, mapping blanks to
// UNKNOWN.
func normalizeStatus(status string) string {
	normalized := strings.ToUpper(strings.TrimSpace(status))
	if normalized == "" {
		return "UNKNOWN"
	}
	return normalized
}
