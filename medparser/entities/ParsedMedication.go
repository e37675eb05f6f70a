package entities

// UnitKind is a normalized dosage unit.
type UnitKind string

const (
	UnitMilligram UnitKind = "mg"
	UnitGram      UnitKind = "g"
	UnitMicrogram UnitKind = "microgram"
)

// ParsedMedication is the structured form of one medication text.
// DosageAmount and DosageUnit are either both set or both nil.
type ParsedMedication struct {
	ActiveIngredient *string   `json:"activeIngredient"`
	DosageAmount     *string   `json:"dosageAmount"`
	DosageUnit       *UnitKind `json:"dosageUnit"`
}

// Ingredient returns the active ingredient or "" when absent.
func (p ParsedMedication) Ingredient() string {
	if p.ActiveIngredient == nil {
		return ""
	}
	return *p.ActiveIngredient
}

// Amount returns the dosage amount or "" when absent.
func (p ParsedMedication) Amount() string {
	if p.DosageAmount == nil {
		return ""
	}
	return *p.DosageAmount
}

// Unit returns the dosage unit or "" when absent.
func (p ParsedMedication) Unit() string {
	if p.DosageUnit == nil {
		return ""
	}
	return string(*p.DosageUnit)
}

// HasDosage reports whether both dosage fields are present.
func (p ParsedMedication) HasDosage() bool {
	return p.DosageAmount != nil && p.DosageUnit != nil
}

// ParseOutcome carries a ParsedMedication together with how it was obtained.
type ParseOutcome struct {
	Medication        ParsedMedication
	Topical           bool // dosage parsing was suppressed
	IngredientMatched bool // ingredient came from the mapping table, not the title-case fallback
}
