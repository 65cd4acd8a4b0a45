package i18n

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed catalog.json
var catalogJSON []byte

// Entry holds one field key's text per locale.
type Entry map[Locale]string

// Catalog is the static translation table for the review form: field keys
// mapped to per-locale labels, placeholders, and button texts. A loaded
// catalog is read-only; renderers receive it by injection and never mutate
// it.
type Catalog struct {
	Labels       map[string]Entry `json:"labels"`
	Placeholders map[string]Entry `json:"placeholders"`
	Buttons      map[string]Entry `json:"buttons"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(catalogJSON, &c); err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}
	return &c, nil
}

// Label returns the label text for the key in the given locale. The second
// return is false when the key has no entry for that locale; callers keep
// their previous text in that case.
func (c *Catalog) Label(key string, loc Locale) (string, bool) {
	return lookup(c.Labels, key, loc)
}

// Placeholder returns the placeholder text for the key in the given locale.
func (c *Catalog) Placeholder(key string, loc Locale) (string, bool) {
	return lookup(c.Placeholders, key, loc)
}

// Button returns the button text for the key in the given locale.
func (c *Catalog) Button(key string, loc Locale) (string, bool) {
	return lookup(c.Buttons, key, loc)
}

func lookup(m map[string]Entry, key string, loc Locale) (string, bool) {
	entry, ok := m[key]
	if !ok {
		return "", false
	}
	text, ok := entry[loc]
	return text, ok
}

// ResolvedCatalog is a catalog flattened to a single locale.
type ResolvedCatalog struct {
	Locale       Locale            `json:"locale"`
	Labels       map[string]string `json:"labels"`
	Placeholders map[string]string `json:"placeholders"`
	Buttons      map[string]string `json:"buttons"`
}

// Resolve flattens the catalog for one locale. Keys missing a translation
// for the target locale fall back to English so the payload is always
// complete.
func (c *Catalog) Resolve(loc Locale) *ResolvedCatalog {
	return &ResolvedCatalog{
		Locale:       loc,
		Labels:       resolve(c.Labels, loc),
		Placeholders: resolve(c.Placeholders, loc),
		Buttons:      resolve(c.Buttons, loc),
	}
}

func resolve(m map[string]Entry, loc Locale) map[string]string {
	out := make(map[string]string, len(m))
	for key, entry := range m {
		if text, ok := entry[loc]; ok {
			out[key] = text
			continue
		}
		if text, ok := entry[LocaleEN]; ok {
			out[key] = text
		}
	}
	return out
}
