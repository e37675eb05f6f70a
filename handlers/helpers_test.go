package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/medications-normalizer/config"
	"github.com/giygas/medications-normalizer/data"
	"github.com/giygas/medications-normalizer/health"
	"github.com/giygas/medications-normalizer/medparser"
	"github.com/giygas/medications-normalizer/medparser/entities"
	"github.com/giygas/medications-normalizer/validation"
	"github.com/go-chi/chi/v5"
)

// cancelledParser fails every batch as if the client went away
type cancelledParser struct {
	*medparser.Parser
}

func (cancelledParser) ParseAll(ctx context.Context, texts []string, workers int) ([]entities.ParsedMedication, error) {
	return nil, context.Canceled
}

func testRecords(n int) []entities.PrescriptionRecord {
	parser := medparser.NewParser(nil)
	records := make([]entities.PrescriptionRecord, n)
	for i := range records {
		text := "Ibuprofen 400mg"
		if i%2 == 1 {
			text = "Amoxicillin 500 mg"
		}
		outcome := parser.Analyze(text)
		records[i] = entities.PrescriptionRecord{
			Row:               i + 1,
			MedicationText:    text,
			PrescriptionDate:  "2024-03-15",
			Columns:           map[string]string{"medication_text": text},
			Parsed:            outcome.Medication,
			IngredientMatched: outcome.IngredientMatched,
		}
	}
	return records
}

func testBatch(n int) *entities.BatchResult {
	return &entities.BatchResult{
		RunID:     "run-test",
		StartedAt: time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC),
		Records:   testRecords(n),
		Report: &entities.QualityReport{
			TotalRows:             n,
			MissingIngredientRows: []int{},
			UnmatchedNames:        []string{},
			MissingDosageRows:     []int{},
			UnparsedDateRows:      []int{},
		},
	}
}

// newTestHandler wires a handler over real components. A nil batch leaves
// the store empty.
func newTestHandler(t *testing.T, batch *entities.BatchResult) (*HTTPHandlerImpl, *data.DataContainer) {
	t.Helper()

	store := data.NewDataContainer()
	store.SetServerStartTime(time.Now().Add(-90 * time.Second))
	if batch != nil {
		store.UpdateData(batch)
	}

	checker := health.NewHealthChecker(store, nil, []config.ClockTime{{Hour: 6}, {Hour: 18}})
	handler := NewHTTPHandler(store, validation.NewDataValidator(), medparser.NewParser(nil), checker, Options{
		MaxBatchTexts: 5,
		Workers:       2,
	})
	return handler, store
}

func newTestRouter(h *HTTPHandlerImpl) http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/parse", h.ParseMedication)
	r.Post("/v1/parse", h.ParseMedication)
	r.Post("/v1/parse/batch", h.ParseMedicationBatch)
	r.Get("/v1/prescriptions", h.ServePrescriptions)
	r.Get("/v1/prescriptions/{row}", h.FindPrescription)
	r.Get("/v1/report", h.ServeReport)
	r.Get("/health", h.HealthCheck)
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, messagePart string) {
	t.Helper()

	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}

	body := decodeBody[map[string]any](t, rr)
	if body["error"] != http.StatusText(status) {
		t.Errorf("error = %v, want %q", body["error"], http.StatusText(status))
	}
	if body["code"] != float64(status) {
		t.Errorf("code = %v, want %d", body["code"], status)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, messagePart) {
		t.Errorf("message = %q, want it to contain %q", msg, messagePart)
	}
}
