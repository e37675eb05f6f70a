package prescriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/medications-normalizer/interfaces"
	"github.com/giygas/medications-normalizer/logging"
	"github.com/giygas/medications-normalizer/medparser"
	"github.com/giygas/medications-normalizer/medparser/entities"
	"github.com/giygas/medications-normalizer/metrics"
	"github.com/google/uuid"
)

// Column names read from and written to prescription files.
const (
	ColumnMedicationText   = "medication_text"
	ColumnPrescriptionDate = "prescription_date"
	ColumnActiveIngredient = "active_ingredient"
	ColumnDosage           = "dosage"
	ColumnUnit             = "unit"
)

// Compile-time check to ensure Processor implements BatchProcessor
var _ interfaces.BatchProcessor = (*Processor)(nil)

// Processor enriches prescription tables with parsed medication fields.
type Processor struct {
	parser    *medparser.Parser
	validator interfaces.DataValidator
	workers   int
}

// NewProcessor creates a processor parsing on up to workers goroutines.
func NewProcessor(parser *medparser.Parser, validator interfaces.DataValidator, workers int) *Processor {
	if parser == nil {
		parser = medparser.NewParser(nil)
	}
	return &Processor{
		parser:    parser,
		validator: validator,
		workers:   max(1, workers),
	}
}

// Process parses the medication text of every row, rewrites the date column
// and fills the active_ingredient, dosage and unit columns in place.
func (p *Processor) Process(ctx context.Context, table *Table) ([]entities.PrescriptionRecord, error) {
	textIdx := table.ColumnIndex(ColumnMedicationText)
	if textIdx < 0 {
		return nil, fmt.Errorf("missing required column %q", ColumnMedicationText)
	}
	dateIdx := table.ColumnIndex(ColumnPrescriptionDate)

	texts := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		texts[i] = row[textIdx]
	}

	outcomes, err := p.parser.AnalyzeAll(ctx, texts, p.workers)
	if err != nil {
		return nil, fmt.Errorf("parsing interrupted: %w", err)
	}

	ingredientIdx := table.EnsureColumn(ColumnActiveIngredient)
	dosageIdx := table.EnsureColumn(ColumnDosage)
	unitIdx := table.EnsureColumn(ColumnUnit)

	records := make([]entities.PrescriptionRecord, len(table.Rows))
	for i, row := range table.Rows {
		outcome := outcomes[i]
		medication := outcome.Medication

		record := entities.PrescriptionRecord{
			Row:               i + 1,
			MedicationText:    texts[i],
			Parsed:            medication,
			Topical:           outcome.Topical,
			IngredientMatched: outcome.IngredientMatched,
		}

		if dateIdx >= 0 {
			record.RawPrescriptionDate = row[dateIdx]
			record.PrescriptionDate, _ = NormalizeDate(row[dateIdx])
			row[dateIdx] = record.PrescriptionDate
		}

		row[ingredientIdx] = medication.Ingredient()
		row[dosageIdx] = medication.Amount()
		row[unitIdx] = medication.Unit()

		record.Columns = make(map[string]string, len(table.Header))
		for j, name := range table.Header {
			record.Columns[name] = row[j]
		}

		metrics.ObserveParse(outcome)
		records[i] = record
	}

	return records, nil
}

// ProcessFile reads inputPath, processes it and writes the result to outputPath.
func (p *Processor) ProcessFile(ctx context.Context, inputPath, outputPath string) (*entities.BatchResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	logging.Info("Starting prescriptions batch", "run_id", runID, "input", inputPath)

	result, err := p.processFile(ctx, runID, start, inputPath, outputPath)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordBatchRun(metrics.BatchStatusError, duration, 0)
		logging.Error("Prescriptions batch failed", "run_id", runID, "error", err)
		return nil, err
	}

	result.Duration = duration
	metrics.RecordBatchRun(metrics.BatchStatusSuccess, duration, len(result.Records))

	logging.Info("Prescriptions batch completed",
		"run_id", runID,
		"rows", len(result.Records),
		"output", outputPath,
		"duration_ms", duration.Milliseconds())

	return result, nil
}

func (p *Processor) processFile(ctx context.Context, runID string, start time.Time, inputPath, outputPath string) (*entities.BatchResult, error) {
	table, err := ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	records, err := p.Process(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", inputPath, err)
	}

	if err := WriteFile(outputPath, table); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	var report *entities.QualityReport
	if p.validator != nil {
		report = p.validator.ReportBatchQuality(records)
	}

	return &entities.BatchResult{
		RunID:      runID,
		InputPath:  inputPath,
		OutputPath: outputPath,
		StartedAt:  start,
		Records:    records,
		Report:     report,
	}, nil
}
