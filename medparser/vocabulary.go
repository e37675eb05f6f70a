package medparser

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Pharmaceutical-form words stripped before the ingredient is resolved.
var defaultFormSuffixes = []string{
	"filmtabletten", "film", "tabletten", "tube", "tab", "cap", "caps", "retard", "sr", "dragee",
}

// unitAlternation lists every unit spelling recognized after a dosage number.
// Case-insensitive matching makes "µg" (micro sign) also accept the Greek mu.
const unitAlternation = `mg|g|micrograms?|mcg|ug|µg`

// dosageTokenRule removes a dosage numeral with its optional unit before the
// ingredient is read.
var dosageTokenRule = newWordRule(`\d+(?:[.,]\d+)?` + space + `*(?:` + unitAlternation + `)?`)

// Vocabulary bundles the static lookup tables used by the parser.
// It is immutable after construction and safe for concurrent use.
type Vocabulary struct {
	ingredients  IngredientTable
	topical      TopicalTerms
	formSuffixes []string

	// removalRules are applied in order to the cleaned text before tokenizing.
	removalRules []wordRule
}

// VocabularyFile is the JSON layout accepted by LoadVocabulary.
type VocabularyFile struct {
	Ingredients  map[string]string `json:"ingredients"`
	TopicalTerms []string          `json:"topicalTerms"`
	FormSuffixes []string          `json:"formSuffixes"`
}

// NewVocabulary validates the tables and compiles the removal rules.
// Aliases are matched case-insensitively, so two aliases that only differ in
// casing must agree on the canonical name. Every entry is NFC-normalized.
func NewVocabulary(ingredients map[string]string, topicalTerms, formSuffixes []string) (*Vocabulary, error) {
	table := make(IngredientTable, len(ingredients))
	for alias, canonical := range ingredients {
		key := normalizeKey(alias)
		canonical = strings.TrimSpace(norm.NFC.String(canonical))
		if key == "" {
			return nil, fmt.Errorf("empty ingredient alias")
		}
		if canonical == "" {
			return nil, fmt.Errorf("empty canonical name for alias %q", alias)
		}
		if existing, ok := table[key]; ok && existing != canonical {
			return nil, fmt.Errorf("alias %q maps to both %q and %q", key, existing, canonical)
		}
		table[key] = canonical
	}

	suffixes := make([]string, 0, len(formSuffixes))
	for _, suffix := range formSuffixes {
		suffix = normalizeKey(suffix)
		if suffix == "" {
			return nil, fmt.Errorf("empty form suffix")
		}
		if !slices.Contains(suffixes, suffix) {
			suffixes = append(suffixes, suffix)
		}
	}

	for _, term := range topicalTerms {
		if strings.TrimSpace(term) == "" {
			return nil, fmt.Errorf("empty topical term")
		}
	}

	v := &Vocabulary{
		ingredients:  table,
		topical:      NewTopicalTerms(topicalTerms...),
		formSuffixes: suffixes,
		removalRules: []wordRule{dosageTokenRule},
	}

	if len(suffixes) > 0 {
		v.removalRules = append(v.removalRules, compileWordRule(suffixes))
	}

	return v, nil
}

// compileWordRule builds a case-insensitive whole-word alternation.
// Longer words come first so the pattern reads the same for any input order.
func compileWordRule(words []string) wordRule {
	sorted := slices.Clone(words)
	slices.SortFunc(sorted, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	quoted := make([]string, len(sorted))
	for i, word := range sorted {
		quoted[i] = regexp.QuoteMeta(word)
	}
	return newWordRule(strings.Join(quoted, "|"))
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// DefaultVocabulary returns the compiled-in tables.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(defaultIngredients, defaultTopicalTerms, defaultFormSuffixes)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in vocabulary: %v", err))
	}
	return v
}

// LoadVocabulary reads a JSON vocabulary file and merges it over the defaults.
func LoadVocabulary(path string) (*Vocabulary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var file VocabularyFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary file %s: %w", path, err)
	}

	ingredients := make(map[string]string, len(defaultIngredients)+len(file.Ingredients))
	for alias, canonical := range defaultIngredients {
		ingredients[alias] = canonical
	}
	for alias, canonical := range file.Ingredients {
		key := normalizeKey(alias)
		if existing, ok := defaultIngredients[key]; ok && existing != strings.TrimSpace(norm.NFC.String(canonical)) {
			return nil, fmt.Errorf("alias %q maps to both %q and %q", key, existing, canonical)
		}
		ingredients[alias] = canonical
	}

	v, err := NewVocabulary(
		ingredients,
		append(slices.Clone(defaultTopicalTerms), file.TopicalTerms...),
		append(slices.Clone(defaultFormSuffixes), file.FormSuffixes...),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid vocabulary file %s: %w", path, err)
	}
	return v, nil
}

// LookupIngredient resolves an alias in any casing.
func (v *Vocabulary) LookupIngredient(alias string) (string, bool) {
	return v.ingredients.Lookup(alias)
}

// IsTopical reports whether text names a topical formulation.
func (v *Vocabulary) IsTopical(text string) bool {
	return v.topical.IsTopical(norm.NFC.String(text))
}

// IngredientCount returns the number of aliases in the mapping table.
func (v *Vocabulary) IngredientCount() int {
	return len(v.ingredients)
}

// TopicalTermCount returns the number of topical keywords.
func (v *Vocabulary) TopicalTermCount() int {
	return v.topical.Len()
}

// FormSuffixes returns a copy of the form words removed during canonicalization.
func (v *Vocabulary) FormSuffixes() []string {
	return slices.Clone(v.formSuffixes)
}
