package medparser

import "regexp"

// nonWord matches one rune that a Unicode-aware \w would not match.
// Go's \b only knows ASCII word characters, so "Ötab" would split before "tab".
const nonWord = `[^\p{L}\p{N}\p{M}_]`

// wordRule removes whole-word matches of a pattern. The runes on either side
// of a match are captured and written back.
type wordRule struct {
	pattern *regexp.Regexp
}

func newWordRule(body string) wordRule {
	return wordRule{
		pattern: regexp.MustCompile(`(?i)(^|` + nonWord + `)(?:` + body + `)(` + nonWord + `|$)`),
	}
}

// Remove deletes every whole-word match in text.
func (r wordRule) Remove(text string) string {
	// A boundary rune consumed by one match cannot open the next one
	// ("tab tab"), so repeat until nothing changes.
	for {
		next := r.pattern.ReplaceAllString(text, "${1}${2}")
		if next == text {
			return text
		}
		text = next
	}
}
