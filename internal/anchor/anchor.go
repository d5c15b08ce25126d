// Package anchor derives fragment identifiers and output file names from
// heading and document titles.
//
// The same transformation backs heading anchors, table-of-contents links and
// generated page names, so links built from a title always resolve to the
// file or heading rendered from that title.
package anchor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// FallbackName is used when a title slugs to the empty string.
const FallbackName = "page"

var (
	// htmlTag matches tag-like substrings such as <br>, </em>, <!-- x -->.
	htmlTag = regexp.MustCompile(`(?i)<[!/a-z].*?>`)

	// punctuation is the denylist: general punctuation, supplemental
	// punctuation and ASCII symbols. Word characters, '-' and '_' survive.
	punctuation = regexp.MustCompile("[\\x{2000}-\\x{206F}\\x{2E00}-\\x{2E7F}\\\\'!\"#$%&()*+,./:;<=>?@\\[\\]^`{|}~]")

	hyphenRun = regexp.MustCompile(`-{2,}`)
)

// ID converts heading text into an anchor identifier.
// It is pure: equal input always yields equal output.
//
// Steps: lower-case, strip tag-like substrings, strip denylisted punctuation,
// collapse whitespace runs to '-', merge hyphen runs, trim hyphens.
// Scripts without matched punctuation (CJK, Cyrillic, ...) pass through.
func ID(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = htmlTag.ReplaceAllString(s, "")
	s = punctuation.ReplaceAllString(s, "")
	s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Filename returns the base name (without extension) for a page generated
// from title. Titles that slug to nothing get FallbackName.
func Filename(title string) string {
	if name := ID(title); name != "" {
		return name
	}
	return FallbackName
}

// Filenames assigns a unique base name to every title, in order.
// Collisions get a numeric suffix: intro, intro-1, intro-2. Reserved names
// (e.g. "index") are never handed out.
// Callers compute this table once per run and share it between
// link generation and file writing.
func Filenames(titles []string, reserved ...string) []string {
	names := make([]string, len(titles))
	used := make(map[string]struct{}, len(titles)+len(reserved))
	for _, r := range reserved {
		used[r] = struct{}{}
	}

	for i, title := range titles {
		base := Filename(title)
		name := base
		for n := 1; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = base + "-" + strconv.Itoa(n)
		}
		used[name] = struct{}{}
		names[i] = name
	}
	return names
}
