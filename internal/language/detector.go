// Package language provides Unicode-block based language detection for
// document content. Detection is a fixed priority list, not a statistical
// classifier: the first script block present in the text wins.
package language

import "regexp"

// scriptPattern pairs a language tag with the Unicode script class that
// selects it.
type scriptPattern struct {
	tag     string
	pattern *regexp.Regexp
}

// Order is significant. Kana is checked before Han so mixed Japanese text
// resolves to "ja" rather than "zh".
var scriptPatterns = []scriptPattern{
	{"he", regexp.MustCompile(`\p{Hebrew}`)},
	{"ar", regexp.MustCompile(`\p{Arabic}`)},
	{"ja", regexp.MustCompile(`[\p{Hiragana}\p{Katakana}]`)},
	{"zh", regexp.MustCompile(`\p{Han}`)},
	{"ko", regexp.MustCompile(`\p{Hangul}`)},
	{"ru", regexp.MustCompile(`\p{Cyrillic}`)},
	{"th", regexp.MustCompile(`\p{Thai}`)},
	{"hi", regexp.MustCompile(`\p{Devanagari}`)},
}

// Detect returns the language tag for the first matching script block in
// text, or "en" when no non-Latin script is found. Detect is pure and
// deterministic; it never fails.
func Detect(text string) string {
	for _, sp := range scriptPatterns {
		if sp.pattern.MatchString(text) {
			return sp.tag
		}
	}
	return "en"
}

// KnownTags returns every tag Detect can produce, in priority order.
func KnownTags() []string {
	tags := make([]string, 0, len(scriptPatterns)+1)
	for _, sp := range scriptPatterns {
		tags = append(tags, sp.tag)
	}
	return append(tags, "en")
}
