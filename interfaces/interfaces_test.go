package interfaces

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/giygas/medications-normalizer/medparser/entities"
)

// MockDataStore implements DataStore interface for testing
type MockDataStore struct {
	batch       *entities.BatchResult
	lastUpdated time.Time
	updating    bool
}

func (m *MockDataStore) GetBatch() *entities.BatchResult {
	return m.batch
}

func (m *MockDataStore) GetRecords() []entities.PrescriptionRecord {
	if m.batch == nil {
		return nil
	}
	return m.batch.Records
}

func (m *MockDataStore) GetRecord(row int) (entities.PrescriptionRecord, bool) {
	records := m.GetRecords()
	if row < 1 || row > len(records) {
		return entities.PrescriptionRecord{}, false
	}
	return records[row-1], true
}

func (m *MockDataStore) GetReport() *entities.QualityReport {
	if m.batch == nil {
		return nil
	}
	return m.batch.Report
}

func (m *MockDataStore) GetLastUpdated() time.Time {
	return m.lastUpdated
}

func (m *MockDataStore) IsUpdating() bool {
	return m.updating
}

func (m *MockDataStore) GetServerStartTime() time.Time {
	return time.Time{}
}

func (m *MockDataStore) UpdateData(batch *entities.BatchResult) {
	m.batch = batch
	m.lastUpdated = time.Now()
}

func (m *MockDataStore) BeginUpdate() bool {
	if m.updating {
		return false
	}
	m.updating = true
	return true
}

func (m *MockDataStore) EndUpdate() {
	m.updating = false
}

// MockParser implements MedicationParser interface for testing
type MockParser struct{}

func (m *MockParser) Parse(text string) entities.ParsedMedication {
	if text == "" {
		return entities.ParsedMedication{}
	}
	return entities.ParsedMedication{ActiveIngredient: &text}
}

func (m *MockParser) ParseAll(ctx context.Context, texts []string, workers int) ([]entities.ParsedMedication, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]entities.ParsedMedication, len(texts))
	for i, text := range texts {
		results[i] = m.Parse(text)
	}
	return results, nil
}

// MockBatchProcessor implements BatchProcessor interface for testing
type MockBatchProcessor struct {
	shouldFail bool
}

func (m *MockBatchProcessor) ProcessFile(ctx context.Context, inputPath, outputPath string) (*entities.BatchResult, error) {
	if m.shouldFail {
		return nil, fmt.Errorf("processing failed")
	}
	return &entities.BatchResult{
		RunID:      "run-1",
		InputPath:  inputPath,
		OutputPath: outputPath,
		Records:    []entities.PrescriptionRecord{{Row: 1, MedicationText: "Aspirin 100mg"}},
		Report:     &entities.QualityReport{TotalRows: 1},
	}, nil
}

// MockScheduler implements Scheduler interface for testing
type MockScheduler struct {
	started bool
}

func (m *MockScheduler) Start() error {
	m.started = true
	return nil
}

func (m *MockScheduler) Stop() {
	m.started = false
}

// MockHTTPHandler implements HTTPHandler interface for testing
type MockHTTPHandler struct{}

func (m *MockHTTPHandler) ParseMedication(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("parsed"))
}

func (m *MockHTTPHandler) ParseMedicationBatch(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (m *MockHTTPHandler) ServePrescriptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (m *MockHTTPHandler) FindPrescription(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (m *MockHTTPHandler) ServeReport(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}

func (m *MockHTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// MockHealthChecker implements HealthChecker interface for testing
type MockHealthChecker struct{}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return "healthy", map[string]any{"rows": 1}, http.StatusOK
}

func (m *MockHealthChecker) CalculateNextRun() time.Time {
	return time.Now().Add(time.Hour)
}

// MockDataValidator implements DataValidator interface for testing
type MockDataValidator struct {
	shouldFail bool
}

func (m *MockDataValidator) ValidateInput(input string) error {
	if m.shouldFail {
		return fmt.Errorf("input validation failed")
	}
	return nil
}

func (m *MockDataValidator) ValidateRow(input string) (int, error) {
	if m.shouldFail {
		return -1, fmt.Errorf("row validation failed")
	}
	return strconv.Atoi(input)
}

func (m *MockDataValidator) ReportBatchQuality(records []entities.PrescriptionRecord) *entities.QualityReport {
	return &entities.QualityReport{TotalRows: len(records)}
}

var (
	_ DataStore        = (*MockDataStore)(nil)
	_ MedicationParser = (*MockParser)(nil)
	_ BatchProcessor   = (*MockBatchProcessor)(nil)
	_ Scheduler        = (*MockScheduler)(nil)
	_ HTTPHandler      = (*MockHTTPHandler)(nil)
	_ HealthChecker    = (*MockHealthChecker)(nil)
	_ DataValidator    = (*MockDataValidator)(nil)
)

func TestDataStoreInterface(t *testing.T) {
	var store DataStore = &MockDataStore{}

	if store.GetBatch() != nil || store.GetReport() != nil {
		t.Error("Expected empty store before the first update")
	}

	processor := &MockBatchProcessor{}
	batch, err := processor.ProcessFile(context.Background(), "in.csv", "out.csv")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	store.UpdateData(batch)

	if len(store.GetRecords()) != 1 {
		t.Errorf("Expected 1 record, got %d", len(store.GetRecords()))
	}
	if _, ok := store.GetRecord(1); !ok {
		t.Error("Expected row 1 to exist")
	}
	if _, ok := store.GetRecord(2); ok {
		t.Error("Expected row 2 to be missing")
	}
	if store.GetLastUpdated().IsZero() {
		t.Error("Expected last updated to be set")
	}
}

func TestDataStoreUpdateGuard(t *testing.T) {
	var store DataStore = &MockDataStore{}

	if !store.BeginUpdate() {
		t.Fatal("First BeginUpdate should succeed")
	}
	if store.BeginUpdate() {
		t.Error("Second BeginUpdate should fail while updating")
	}
	store.EndUpdate()
	if !store.BeginUpdate() {
		t.Error("BeginUpdate should succeed after EndUpdate")
	}
}

func TestMedicationParserInterface(t *testing.T) {
	var parser MedicationParser = &MockParser{}

	results, err := parser.ParseAll(context.Background(), []string{"a", "", "c"}, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[1].ActiveIngredient != nil {
		t.Error("Expected absent ingredient for empty text")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := parser.ParseAll(ctx, []string{"a"}, 1); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestBatchProcessorInterface(t *testing.T) {
	var processor BatchProcessor = &MockBatchProcessor{shouldFail: true}

	if _, err := processor.ProcessFile(context.Background(), "in.csv", "out.csv"); err == nil {
		t.Error("Expected error but got none")
	}
}

func TestSchedulerInterface(t *testing.T) {
	scheduler := &MockScheduler{}

	if err := scheduler.Start(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if !scheduler.started {
		t.Error("Scheduler should be started")
	}

	scheduler.Stop()
	if scheduler.started {
		t.Error("Scheduler should be stopped")
	}
}

func TestHTTPHandlerInterface(t *testing.T) {
	var handler HTTPHandler = &MockHTTPHandler{}

	req := httptest.NewRequest(http.MethodGet, "/v1/parse?text=Aspirin", nil)
	w := httptest.NewRecorder()
	handler.ParseMedication(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != "parsed" {
		t.Errorf("Expected body 'parsed', got '%s'", w.Body.String())
	}
}

func TestHealthCheckerInterface(t *testing.T) {
	var checker HealthChecker = &MockHealthChecker{}

	status, details, httpStatus := checker.HealthCheck()
	if status != "healthy" || httpStatus != http.StatusOK {
		t.Errorf("Expected healthy/200, got %s/%d", status, httpStatus)
	}
	if details["rows"] != 1 {
		t.Errorf("Expected rows detail 1, got %v", details["rows"])
	}
	if !checker.CalculateNextRun().After(time.Now()) {
		t.Error("Next run should be in the future")
	}
}

func TestDataValidatorInterface(t *testing.T) {
	var validator DataValidator = &MockDataValidator{}

	if err := validator.ValidateInput("Aspirin"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if row, err := validator.ValidateRow("3"); err != nil || row != 3 {
		t.Errorf("ValidateRow(3) = %d, %v", row, err)
	}
	if report := validator.ReportBatchQuality(make([]entities.PrescriptionRecord, 2)); report.TotalRows != 2 {
		t.Errorf("Expected 2 total rows, got %d", report.TotalRows)
	}

	failing := &MockDataValidator{shouldFail: true}
	if err := failing.ValidateInput("Aspirin"); err == nil {
		t.Error("Expected error but got none")
	}
}
