package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name. Full-width
// alphanumerics common in Japanese company names are folded to their ASCII
// equivalents before slugging. Names with no ASCII-representable characters
// produce an empty slug; callers should fall back to an ID-based URL.
//
// Examples:
//   - "Acme Holdings K.K." → "acme-holdings-k-k"
//   - "ＳＯＮＹグループ" → "sony"
//   - "株式会社日立製作所" → ""
func Generate(name string) string {
	slug := strings.ToLower(strings.TrimSpace(foldWidth(name)))

	// Replace any non-alphanumeric characters with hyphens
	slug = slugRegexp.ReplaceAllString(slug, "-")

	// Trim leading and trailing hyphens
	slug = strings.Trim(slug, "-")

	// Collapse consecutive hyphens into single hyphens
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return slug
}

// foldWidth maps full-width ASCII variants (U+FF01..U+FF5E) and the
// ideographic space to their half-width equivalents.
func foldWidth(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0xFF01 && r <= 0xFF5E:
			return r - 0xFF01 + 0x21
		case r == 0x3000:
			return ' '
		}
		return r
	}, s)
}
