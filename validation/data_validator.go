// Package validation provides input validation and batch quality reporting
// for the medications normalizer.
package validation

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/medications-normalizer/interfaces"
	"github.com/giygas/medications-normalizer/logging"
	"github.com/giygas/medications-normalizer/medparser/entities"
)

const (
	// MaxInputRunes bounds a single medication text received over HTTP
	MaxInputRunes = 500

	// maxReportedRows bounds the row and name lists kept in a quality report
	maxReportedRows = 10

	maxRepetition = 20
)

// Medication texts legitimately contain punctuation such as "-", "/", "(" and
// ";", so only markup and script injection patterns are rejected.
var dangerousPatterns = []string{
	"<script", "</script>", "javascript:", "vbscript:", "data:text/html",
	"onload=", "onerror=", "onclick=", "onmouseover=", "onfocus=", "onblur=",
	"onchange=", "onsubmit=", "eval(", "expression(", "<iframe", "<object",
}

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateInput validates a medication text received from a client.
// An empty text is valid and parses to all-absent fields.
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if !utf8.ValidString(input) {
		return fmt.Errorf("input is not valid UTF-8")
	}

	if n := utf8.RuneCountInString(input); n > MaxInputRunes {
		return fmt.Errorf("input too long: maximum %d characters, got %d", MaxInputRunes, n)
	}

	for _, r := range input {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return fmt.Errorf("input contains control characters")
		}
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateRow validates a 1-based data row number
// No regex used - strconv.Atoi() validates numeric format for free
func (v *DataValidatorImpl) ValidateRow(input string) (int, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return -1, fmt.Errorf("input cannot be empty")
	}

	// Reject if original input contained whitespace (spaces, tabs, etc.)
	if len(input) != len(trimmedInput) {
		return -1, fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if len(trimmedInput) > 9 {
		return -1, fmt.Errorf("row number too large")
	}

	row, err := strconv.Atoi(trimmedInput)
	if err != nil || strings.HasPrefix(trimmedInput, "+") {
		return -1, fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if row < 1 {
		return -1, fmt.Errorf("row numbers start at 1")
	}

	return row, nil
}

// ReportBatchQuality summarizes the rows of a batch whose fields could not be
// fully extracted. Row lists and unmatched names keep the first 10 entries.
func (v *DataValidatorImpl) ReportBatchQuality(records []entities.PrescriptionRecord) *entities.QualityReport {
	report := &entities.QualityReport{
		TotalRows:             len(records),
		MissingIngredientRows: []int{},
		UnmatchedNames:        []string{},
		MissingDosageRows:     []int{},
		UnparsedDateRows:      []int{},
	}

	unmatched := make(map[string]bool)

	for _, record := range records {
		// Check 1: empty texts are counted once and skip the field checks
		if strings.TrimSpace(record.MedicationText) == "" {
			report.EmptyMedicationText++
		} else {
			// Check 2: no ingredient could be read
			if record.Parsed.ActiveIngredient == nil {
				report.MissingIngredient++
				report.MissingIngredientRows = appendCapped(report.MissingIngredientRows, record.Row)
			} else if !record.IngredientMatched {
				// Check 3: ingredient came from the title-case fallback
				report.UnmatchedIngredients++
				unmatched[record.Parsed.Ingredient()] = true
			}

			// Check 4: topical rows carry no dosage on purpose
			if record.Topical {
				report.TopicalRows++
			} else if !record.Parsed.HasDosage() {
				report.MissingDosage++
				report.MissingDosageRows = appendCapped(report.MissingDosageRows, record.Row)
			}
		}

		// Check 5: a date was given but could not be read
		if strings.TrimSpace(record.RawPrescriptionDate) != "" && record.PrescriptionDate == "" {
			report.UnparsedDates++
			report.UnparsedDateRows = appendCapped(report.UnparsedDateRows, record.Row)
		}
	}

	for name := range unmatched {
		report.UnmatchedNames = append(report.UnmatchedNames, name)
	}
	slices.Sort(report.UnmatchedNames)
	if len(report.UnmatchedNames) > maxReportedRows {
		report.UnmatchedNames = report.UnmatchedNames[:maxReportedRows]
	}

	if report.MissingIngredient > 0 || report.UnparsedDates > 0 {
		logging.Debug("Batch quality issues found",
			"missing_ingredient", report.MissingIngredient,
			"unparsed_dates", report.UnparsedDates,
		)
	}

	return report
}

func appendCapped(rows []int, row int) []int {
	if len(rows) >= maxReportedRows {
		return rows
	}
	return append(rows, row)
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	var last rune
	run := 0
	for _, r := range input {
		if r == last {
			run++
		} else {
			last = r
			run = 1
		}
		if run > maxRepetition {
			return true
		}
	}
	return false
}
