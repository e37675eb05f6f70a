// Package interfaces defines core abstractions for the medications normalizer
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/medications-normalizer/medparser/entities"
)

// DataStore defines the contract for storing the latest processed batch.
// Implementations swap the batch atomically so readers never observe a
// partially updated state.
type DataStore interface {
	// Data retrieval methods
	GetBatch() *entities.BatchResult
	GetRecords() []entities.PrescriptionRecord
	GetRecord(row int) (entities.PrescriptionRecord, bool)
	GetReport() *entities.QualityReport
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Data update methods
	UpdateData(batch *entities.BatchResult)
	BeginUpdate() bool
	EndUpdate()
}

// MedicationParser defines the contract for turning free-form medication
// texts into structured fields.
type MedicationParser interface {
	Parse(text string) entities.ParsedMedication

	// ParseAll keeps the input order and fails only when ctx is done
	ParseAll(ctx context.Context, texts []string, workers int) ([]entities.ParsedMedication, error)
}

// BatchProcessor defines the contract for processing a prescriptions file
// into an enriched output file.
type BatchProcessor interface {
	ProcessFile(ctx context.Context, inputPath, outputPath string) (*entities.BatchResult, error)
}

// Scheduler defines the contract for recurring batch processing.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	ParseMedication(w http.ResponseWriter, r *http.Request)
	ParseMedicationBatch(w http.ResponseWriter, r *http.Request)
	ServePrescriptions(w http.ResponseWriter, r *http.Request)
	FindPrescription(w http.ResponseWriter, r *http.Request)
	ServeReport(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the status, its details and the HTTP status to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextRun returns the next scheduled batch run
	CalculateNextRun() time.Time
}

// DataValidator defines the contract for input validation and batch quality
// reporting.
type DataValidator interface {
	// ValidateInput validates a medication text received from a client
	ValidateInput(input string) error

	// ValidateRow validates a 1-based row number received from a client
	ValidateRow(input string) (int, error)

	// ReportBatchQuality summarizes rows that could not be fully parsed
	ReportBatchQuality(records []entities.PrescriptionRecord) *entities.QualityReport
}
