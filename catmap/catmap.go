// Package catmap maps vendor category labels onto the site's fixed internal
// taxonomy. It is a decision table, not a scorer: rules are consulted in
// priority order and the first match wins.
package catmap

import "strings"

// Fallback is the catch-all category used when no rule matches.
const Fallback = "Ev Çözümleri"

// BrandRule maps a vendor label (or label fragment) to an internal category.
type BrandRule struct {
	Match    string
	Category string
}

// GlobalRule associates an internal category with keywords that select it.
type GlobalRule struct {
	Category string
	Keywords []string
}

// Rules is a complete rule table. Slice order is significant: within a tier
// the first matching rule wins.
type Rules struct {
	// BrandSpecific rules are consulted first, keyed by brand. Each rule is
	// tried as an exact match across the whole list, then as a
	// case-insensitive substring match.
	BrandSpecific map[string][]BrandRule

	// Global keyword rules run after brand rules.
	Global []GlobalRule

	// Fallback is returned when nothing matches (and for empty input).
	Fallback string
}

// Normalizer resolves vendor categories against a rule table.
type Normalizer struct {
	rules Rules
}

// New creates a Normalizer from the given rule table.
func New(rules Rules) *Normalizer {
	if rules.Fallback == "" {
		rules.Fallback = Fallback
	}
	return &Normalizer{rules: rules}
}

// Normalize maps a vendor category to an internal one.
//
// Precedence: brand exact match → brand substring match → global keyword
// match → fallback. An empty originalCategory short-circuits to the
// fallback without consulting any tier.
func (n *Normalizer) Normalize(brand, originalCategory string) string {
	if strings.TrimSpace(originalCategory) == "" {
		return n.rules.Fallback
	}

	lower := strings.ToLower(originalCategory)

	if brandRules, ok := n.rules.BrandSpecific[brand]; ok {
		for _, r := range brandRules {
			if r.Match == originalCategory {
				return r.Category
			}
		}
		for _, r := range brandRules {
			if strings.Contains(lower, strings.ToLower(r.Match)) {
				return r.Category
			}
		}
	}

	for _, g := range n.rules.Global {
		for _, kw := range g.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return g.Category
			}
		}
	}

	return n.rules.Fallback
}

// Categories returns the internal taxonomy in rule order, fallback last.
func (n *Normalizer) Categories() []string {
	seen := make(map[string]struct{}, len(n.rules.Global)+1)
	out := make([]string, 0, len(n.rules.Global)+1)
	for _, g := range n.rules.Global {
		if _, ok := seen[g.Category]; !ok {
			seen[g.Category] = struct{}{}
			out = append(out, g.Category)
		}
	}
	if _, ok := seen[n.rules.Fallback]; !ok {
		out = append(out, n.rules.Fallback)
	}
	return out
}
