package medparser

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var defaultTopicalTerms = []string{"gel", "cream", "ointment", "spray", "patch", "lotion", "solution"}

// TopicalTerms is a read-only set of lowercase keywords that mark a topical formulation.
type TopicalTerms struct {
	terms []string
}

// NewTopicalTerms builds a term set. Terms are lowercased, trimmed and deduplicated;
// blank terms are dropped.
func NewTopicalTerms(terms ...string) TopicalTerms {
	set := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(norm.NFC.String(term)))
		if term == "" || slices.Contains(set, term) {
			continue
		}
		set = append(set, term)
	}
	slices.Sort(set)
	return TopicalTerms{terms: set}
}

// IsTopical reports whether any term occurs in text. The match is a
// case-insensitive substring match, so "gel" also matches "Gelkapsel".
func (t TopicalTerms) IsTopical(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range t.terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Terms returns a copy of the terms in sorted order.
func (t TopicalTerms) Terms() []string {
	return slices.Clone(t.terms)
}

// Len returns the number of terms.
func (t TopicalTerms) Len() int {
	return len(t.terms)
}
