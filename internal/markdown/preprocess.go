package markdown

import (
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through goldmark unchanged and become <mark> tags afterwards,
// so ==text== works without enabling raw HTML.
const (
	markStart = "\uE000" // U+E000: Private Use Area
	markEnd   = "\uE001" // U+E001: Private Use Area
)

var (
	crlfOrCR         = regexp.MustCompile(`\r\n?`)
	highlightPattern = regexp.MustCompile(`==(\S(?:.*?\S)?)==`)
)

// preprocess normalizes line endings and converts ==text== to placeholders.
func preprocess(content string) string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	return highlightPattern.ReplaceAllString(content, markStart+"$1"+markEnd)
}

// convertMarkPlaceholders turns placeholders into <mark> tags.
func convertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, markStart, "<mark>"),
		markEnd, "</mark>",
	)
}

// stripMarkPlaceholders removes placeholders from heading text before
// deriving an anchor id.
func stripMarkPlaceholders(s string) string {
	return strings.NewReplacer(markStart, "", markEnd, "").Replace(s)
}
