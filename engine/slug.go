package engine

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// turkishReplacer transliterates the Turkish letters that would otherwise
// be dropped by the ASCII filter. İ folds to plain i, matching how the
// site's URLs have always been generated.
var turkishReplacer = strings.NewReplacer(
	"ç", "c", "ğ", "g", "ı", "i", "ö", "o", "ş", "s", "ü", "u",
	"Ç", "c", "Ğ", "g", "İ", "i", "Ö", "o", "Ş", "s", "Ü", "u",
)

// Slugify converts text into a URL-friendly slug: Turkish-aware
// transliteration, lowercase, non-alphanumerics stripped, whitespace and
// underscores collapsed to single hyphens, capped at 80 characters.
func Slugify(text string) string {
	t := strings.ToLower(turkishReplacer.Replace(text))

	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '_':
			b.WriteByte('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = strings.Trim(slug[:80], "-")
	}
	return slug
}

// ProductID derives the stable record id: a slug of brand+name plus a short
// hash of the source URL. The hash keeps ids distinct when two vendors sell
// an identically named product; re-scraping the same page always reproduces
// the same id.
func ProductID(brand, name, sourceURL string) string {
	sum := md5.Sum([]byte(sourceURL))
	return Slugify(brand+"-"+name) + "-" + hex.EncodeToString(sum[:])[:4]
}
