package i18n

import (
	"strings"
)

// Locale identifies one of the supported display languages.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleJA Locale = "ja"
	LocaleZH Locale = "zh"
)

// SupportedLocales returns the set of locales the platform renders.
func SupportedLocales() []Locale {
	return []Locale{LocaleEN, LocaleJA, LocaleZH}
}

// IsSupported checks whether the locale is in the supported set.
func IsSupported(l Locale) bool {
	for _, s := range SupportedLocales() {
		if s == l {
			return true
		}
	}
	return false
}

// DetectDefaultLocale maps a free-form locale tag ("ja", "ja-JP", "zh_CN",
// "fr-FR") to the nearest supported locale by its primary subtag. English is
// the fallback for anything unrecognized, including the empty tag.
func DetectDefaultLocale(tag string) Locale {
	primary := strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(primary, "-_"); i >= 0 {
		primary = primary[:i]
	}

	switch Locale(primary) {
	case LocaleJA:
		return LocaleJA
	case LocaleZH:
		return LocaleZH
	default:
		return LocaleEN
	}
}
