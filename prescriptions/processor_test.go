package prescriptions

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/giygas/medications-normalizer/medparser"
	"github.com/giygas/medications-normalizer/validation"
)

const sampleInput = "patient_id,medication_text,prescription_date\n" +
	"1,Ibuprofen 400mg,2024-03-15\n" +
	"2,Amoxicillin 500 mg (Tabletten),15.03.2024\n" +
	"3,Diclofenac Gel 1%,\n" +
	"4,,not a date\n" +
	"5,Salbutamol Inhalation,03/01/2024\n"

const sampleOutput = "patient_id,medication_text,prescription_date,active_ingredient,dosage,unit\n" +
	"1,Ibuprofen 400mg,2024-03-15,Ibuprofen,400,mg\n" +
	"2,Amoxicillin 500 mg (Tabletten),2024-03-15,Amoxicillin,500,mg\n" +
	"3,Diclofenac Gel 1%,,Diclofenac,,\n" +
	"4,,,,,\n" +
	"5,Salbutamol Inhalation,2024-03-01,Salbutamol,,\n"

func newTestProcessor(workers int) *Processor {
	return NewProcessor(medparser.NewParser(nil), validation.NewDataValidator(), workers)
}

func TestProcess(t *testing.T) {
	table, err := ReadTable(strings.NewReader(sampleInput))
	if err != nil {
		t.Fatalf("ReadTable returned error: %v", err)
	}

	records, err := newTestProcessor(4).Process(context.Background(), table)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}

	first := records[0]
	if first.Row != 1 || first.Parsed.Ingredient() != "Ibuprofen" || first.Parsed.Amount() != "400" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if !first.IngredientMatched {
		t.Error("Ibuprofen should come from the mapping table")
	}
	if first.Columns["patient_id"] != "1" || first.Columns[ColumnUnit] != "mg" {
		t.Errorf("unexpected columns: %v", first.Columns)
	}

	topical := records[2]
	if !topical.Topical || topical.Parsed.HasDosage() {
		t.Errorf("Diclofenac Gel should be topical without dosage: %+v", topical)
	}

	empty := records[3]
	if empty.Parsed.ActiveIngredient != nil || empty.Parsed.HasDosage() {
		t.Errorf("empty text should parse to all-absent fields: %+v", empty.Parsed)
	}
	if empty.RawPrescriptionDate != "not a date" || empty.PrescriptionDate != "" {
		t.Errorf("unparseable date should be coerced to empty, got raw=%q date=%q",
			empty.RawPrescriptionDate, empty.PrescriptionDate)
	}

	fallback := records[4]
	if fallback.IngredientMatched || fallback.Parsed.Ingredient() != "Salbutamol" {
		t.Errorf("Salbutamol should use the title-case fallback: %+v", fallback)
	}
}

func TestProcessOverwritesOutputColumns(t *testing.T) {
	table := &Table{
		Header: []string{"unit", "medication_text", "dosage"},
		Rows:   [][]string{{"stale", "Aspirin 100mg", "stale"}},
	}

	if _, err := newTestProcessor(1).Process(context.Background(), table); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	wantHeader := []string{"unit", "medication_text", "dosage", "active_ingredient"}
	if !slices.Equal(table.Header, wantHeader) {
		t.Errorf("Header = %v, want %v", table.Header, wantHeader)
	}
	wantRow := []string{"mg", "Aspirin 100mg", "100", "Aspirin"}
	if !slices.Equal(table.Rows[0], wantRow) {
		t.Errorf("Row = %v, want %v", table.Rows[0], wantRow)
	}
}

func TestProcessWithoutDateColumn(t *testing.T) {
	table := &Table{
		Header: []string{"medication_text"},
		Rows:   [][]string{{"Metformin 1000mg"}},
	}

	records, err := newTestProcessor(1).Process(context.Background(), table)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if records[0].PrescriptionDate != "" || records[0].RawPrescriptionDate != "" {
		t.Errorf("expected no date fields, got %+v", records[0])
	}
	if table.ColumnIndex(ColumnPrescriptionDate) != -1 {
		t.Error("date column should not be added")
	}
}

func TestProcessMissingTextColumn(t *testing.T) {
	table := &Table{Header: []string{"drug"}, Rows: [][]string{{"Aspirin"}}}

	_, err := newTestProcessor(1).Process(context.Background(), table)
	if err == nil || !strings.Contains(err.Error(), ColumnMedicationText) {
		t.Errorf("expected missing column error, got %v", err)
	}
}

func TestProcessCancelled(t *testing.T) {
	table, err := ReadTable(strings.NewReader(sampleInput))
	if err != nil {
		t.Fatalf("ReadTable returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestProcessor(2).Process(ctx, table); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "prescriptions.csv")
	output := filepath.Join(dir, "out", "prescriptions_clean.csv")

	if err := os.WriteFile(input, []byte(sampleInput), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	result, err := newTestProcessor(3).ProcessFile(context.Background(), input, output)
	if err != nil {
		t.Fatalf("ProcessFile returned error: %v", err)
	}

	written, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(written) != sampleOutput {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", written, sampleOutput)
	}

	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if result.InputPath != input || result.OutputPath != output {
		t.Errorf("unexpected paths: %s -> %s", result.InputPath, result.OutputPath)
	}
	if len(result.Records) != 5 {
		t.Errorf("got %d records, want 5", len(result.Records))
	}

	report := result.Report
	if report == nil {
		t.Fatal("expected a quality report")
	}
	if report.TotalRows != 5 {
		t.Errorf("TotalRows = %d, want 5", report.TotalRows)
	}
	if report.EmptyMedicationText != 1 {
		t.Errorf("EmptyMedicationText = %d, want 1", report.EmptyMedicationText)
	}
	if report.TopicalRows != 1 {
		t.Errorf("TopicalRows = %d, want 1", report.TopicalRows)
	}
	if report.MissingDosage != 1 || !slices.Equal(report.MissingDosageRows, []int{5}) {
		t.Errorf("MissingDosage = %d %v, want 1 [5]", report.MissingDosage, report.MissingDosageRows)
	}
	if report.UnmatchedIngredients != 1 || !slices.Equal(report.UnmatchedNames, []string{"Salbutamol"}) {
		t.Errorf("Unmatched = %d %v, want 1 [Salbutamol]", report.UnmatchedIngredients, report.UnmatchedNames)
	}
	if report.UnparsedDates != 1 || !slices.Equal(report.UnparsedDateRows, []int{4}) {
		t.Errorf("UnparsedDates = %d %v, want 1 [4]", report.UnparsedDates, report.UnparsedDateRows)
	}
}

func TestProcessFileErrors(t *testing.T) {
	dir := t.TempDir()
	processor := newTestProcessor(1)

	if _, err := processor.ProcessFile(context.Background(), filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.csv")); err == nil {
		t.Error("expected an error for a missing input file")
	}

	input := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(input, []byte("drug\nAspirin\n"), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	output := filepath.Join(dir, "bad_out.csv")
	if _, err := processor.ProcessFile(context.Background(), input, output); err == nil {
		t.Error("expected an error for a file without medication_text")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output should be written when processing fails")
	}
}
