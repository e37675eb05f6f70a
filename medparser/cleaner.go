// Package medparser extracts the active ingredient and dosage from free-form
// medication descriptions such as "Ibuprofen 400mg Filmtabletten".
//
// All parsing functions are total: they never fail and never panic on any
// input string. Fields that cannot be determined are reported as absent.
// The lookup tables live in a Vocabulary that is built once and only read
// afterwards, so a Parser can be shared by any number of goroutines.
package medparser

import (
	"regexp"
	"strings"
)

// space matches the same characters as a Unicode-aware \s.
const space = `[\s\v\x1c-\x1f\x{85}\p{Z}]`

var (
	parenthesesPattern = regexp.MustCompile(`\(.*?\)`)
	whitespacePattern  = regexp.MustCompile(space + `+`)
)

// RemoveParentheses deletes every complete "(...)" span, shortest match first.
// Unbalanced parentheses are left as they are.
func RemoveParentheses(text string) string {
	return parenthesesPattern.ReplaceAllString(text, "")
}

// NormalizeWhitespace collapses whitespace runs into a single space and trims the ends.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
