package entities

import "time"

// PrescriptionRecord is one processed row of a prescriptions file.
type PrescriptionRecord struct {
	Row                 int               `json:"row"`
	MedicationText      string            `json:"medicationText"`
	PrescriptionDate    string            `json:"prescriptionDate,omitempty"`
	RawPrescriptionDate string            `json:"-"`
	Columns             map[string]string `json:"columns"`
	Parsed              ParsedMedication  `json:"parsed"`
	Topical             bool              `json:"topical"`
	IngredientMatched   bool              `json:"ingredientMatched"`
}

// BatchResult describes a completed processing run over a prescriptions file.
type BatchResult struct {
	RunID      string               `json:"runId"`
	InputPath  string               `json:"inputPath"`
	OutputPath string               `json:"outputPath"`
	StartedAt  time.Time            `json:"startedAt"`
	Duration   time.Duration        `json:"duration"`
	Records    []PrescriptionRecord `json:"-"`
	Report     *QualityReport       `json:"report"`
}

// QualityReport summarizes rows whose fields could not be fully extracted.
type QualityReport struct {
	TotalRows             int      `json:"totalRows"`
	EmptyMedicationText   int      `json:"emptyMedicationText"`
	MissingIngredient     int      `json:"missingIngredient"`
	MissingIngredientRows []int    `json:"missingIngredientRows"`
	UnmatchedIngredients  int      `json:"unmatchedIngredients"`
	UnmatchedNames        []string `json:"unmatchedNames"`
	TopicalRows           int      `json:"topicalRows"`
	MissingDosage         int      `json:"missingDosage"`
	MissingDosageRows     []int    `json:"missingDosageRows"`
	UnparsedDates         int      `json:"unparsedDates"`
	UnparsedDateRows      []int    `json:"unparsedDateRows"`
}
