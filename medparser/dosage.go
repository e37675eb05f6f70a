package medparser

import (
	"regexp"
	"strings"

	"github.com/giygas/medications-normalizer/medparser/entities"
	"golang.org/x/text/unicode/norm"
)

// The number is only bounded on the right: "A1 200mg" reads the "1".
// "5mgÖ" is one word, so neither "mg" nor "5" is read there.
var dosagePattern = regexp.MustCompile(`(?i)(?P<amount>\d+(?:[.,]\d+)?)` + space + `*(?P<unit>` + unitAlternation + `)?(?:` + nonWord + `|$)`)

var (
	amountGroup = dosagePattern.SubexpIndex("amount")
	unitGroup   = dosagePattern.SubexpIndex("unit")
)

// ExtractDosage returns the first dosage amount in text and its normalized unit.
// Topical formulations never yield a dosage. A number without a unit is read as mg.
// The decimal comma is rewritten as a point; thousands separators are not
// recognized, so "1.000" stays "1.000".
func (v *Vocabulary) ExtractDosage(text string) (string, entities.UnitKind, bool) {
	text = norm.NFC.String(text)
	if v.topical.IsTopical(text) {
		return "", "", false
	}
	return matchDosage(text)
}

func matchDosage(text string) (string, entities.UnitKind, bool) {
	match := dosagePattern.FindStringSubmatch(text)
	if match == nil {
		return "", "", false
	}

	amount := strings.ReplaceAll(match[amountGroup], ",", ".")

	unit := entities.UnitMilligram
	if raw := match[unitGroup]; raw != "" {
		if normalized, ok := NormalizeUnit(raw); ok {
			unit = normalized
		}
	}

	return amount, unit, true
}

// NormalizeUnit maps a unit spelling to its UnitKind. Canonical values map to
// themselves, so the function is idempotent.
func NormalizeUnit(raw string) (entities.UnitKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mg":
		return entities.UnitMilligram, true
	case "g":
		return entities.UnitGram, true
	case "microgram", "micrograms", "mcg", "ug", "µg", "μg":
		return entities.UnitMicrogram, true
	default:
		return "", false
	}
}
