package medparser

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CanonicalizeIngredient returns the canonical active-ingredient name found in text.
// The boolean is false when no token with a letter survives cleaning.
func (v *Vocabulary) CanonicalizeIngredient(text string) (string, bool) {
	name, _, ok := v.canonicalize(norm.NFC.String(text))
	return name, ok
}

// canonicalize also reports whether the name came from the mapping table.
// text must already be NFC.
func (v *Vocabulary) canonicalize(text string) (name string, matched bool, ok bool) {
	cleaned := NormalizeWhitespace(RemoveParentheses(text))
	for _, rule := range v.removalRules {
		cleaned = rule.Remove(cleaned)
	}
	cleaned = NormalizeWhitespace(strings.ReplaceAll(cleaned, "-", " "))

	tokens := strings.Fields(cleaned)
	first := slices.IndexFunc(tokens, hasLetter)
	if first < 0 {
		return "", false, false
	}

	candidate := strings.ToLower(tokens[0])
	// A one or two letter first token is taken as a split prefix ("L Thyroxin")
	// and rejoined with the next token. Genuine two-letter names are misread.
	if len(tokens) > 1 && utf8.RuneCountInString(tokens[0]) <= 2 {
		candidate = candidate + "-" + strings.ToLower(tokens[1])
	}
	candidate = strings.Trim(candidate, ",. ")
	if candidate == "" {
		// "... Aspirin": the leading token was only punctuation
		candidate = strings.Trim(strings.ToLower(tokens[first]), ",. ")
	}

	if canonical, found := v.ingredients.Lookup(candidate); found {
		return canonical, true, true
	}
	return strings.TrimSpace(titleCase(strings.ReplaceAll(candidate, "-", " "))), false, true
}

func hasLetter(token string) bool {
	return strings.ContainsFunc(token, unicode.IsLetter)
}

// titleCase upper-cases the first letter of each word and lower-cases the rest.
// A Caser keeps state, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
