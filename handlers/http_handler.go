// Package handlers provides HTTP request handlers for the medications
// normalizer: parse endpoints, browsing of the latest prescriptions batch
// and the health check.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/medications-normalizer/interfaces"
	"github.com/giygas/medications-normalizer/logging"
	"github.com/giygas/medications-normalizer/medparser/entities"
	"github.com/go-chi/chi/v5"
)

const (
	pageSize             = 10
	defaultMaxBatchTexts = 1000
)

var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	parser        interfaces.MedicationParser
	healthChecker interfaces.HealthChecker
	maxBatchTexts int
	workers       int
}

// Options tunes the batch parse endpoint
type Options struct {
	MaxBatchTexts int
	Workers       int
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator, parser interfaces.MedicationParser, healthChecker interfaces.HealthChecker, opts Options) *HTTPHandlerImpl {
	if opts.MaxBatchTexts <= 0 {
		opts.MaxBatchTexts = defaultMaxBatchTexts
	}
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		parser:        parser,
		healthChecker: healthChecker,
		maxBatchTexts: opts.MaxBatchTexts,
		workers:       max(1, opts.Workers),
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
}

type parseRequest struct {
	Text *string `json:"text"`
}

type batchParseRequest struct {
	Texts []string `json:"texts"`
}

type batchParseResponse struct {
	Results []entities.ParsedMedication `json:"results"`
}

type prescriptionsPage struct {
	Data       []entities.PrescriptionRecord `json:"data"`
	Page       int                           `json:"page"`
	PageSize   int                           `json:"pageSize"`
	TotalItems int                           `json:"totalItems"`
	MaxPage    int                           `json:"maxPage"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// decodeJSON decodes a single JSON document from the request body
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return errors.New("request body too large")
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return fmt.Errorf("invalid JSON body: %v", err)
		}
	}

	if decoder.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// ParseMedication parses one medication text, from the text query parameter
// on GET or a {"text": ...} body on POST
func (h *HTTPHandlerImpl) ParseMedication(w http.ResponseWriter, r *http.Request) {
	var text string

	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		if !query.Has("text") {
			h.RespondWithError(w, http.StatusBadRequest, "Missing text parameter")
			return
		}
		text = query.Get("text")
	default:
		var req parseRequest
		if err := decodeJSON(r, &req); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Text == nil {
			h.RespondWithError(w, http.StatusBadRequest, "Missing text field")
			return
		}
		text = *req.Text
	}

	if err := h.validator.ValidateInput(text); err != nil {
		logging.Warn("Unusual user input", "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondWithJSON(w, http.StatusOK, h.parser.Parse(text))
}

// ParseMedicationBatch parses a {"texts": [...]} body and answers with the
// results in input order
func (h *HTTPHandlerImpl) ParseMedicationBatch(w http.ResponseWriter, r *http.Request) {
	var req batchParseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Texts == nil {
		h.RespondWithError(w, http.StatusBadRequest, "Missing texts field")
		return
	}

	if len(req.Texts) > h.maxBatchTexts {
		h.RespondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("Too many texts: %d (maximum %d)", len(req.Texts), h.maxBatchTexts))
		return
	}

	for i, text := range req.Texts {
		if err := h.validator.ValidateInput(text); err != nil {
			logging.Warn("Unusual user input", "index", i, "error", err)
			h.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("texts[%d]: %v", i, err))
			return
		}
	}

	results, err := h.parser.ParseAll(r.Context(), req.Texts, h.workers)
	if err != nil {
		logging.Warn("Batch parse interrupted", "error", err, "texts", len(req.Texts))
		h.RespondWithError(w, http.StatusServiceUnavailable, "Request cancelled")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, batchParseResponse{Results: results})
}

// ServePrescriptions returns one page of the latest batch records
func (h *HTTPHandlerImpl) ServePrescriptions(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			logging.Warn("Unusual user input", "page", raw)
			h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
			return
		}
		page = n
	}

	if h.dataStore.GetBatch() == nil {
		h.RespondWithError(w, http.StatusNotFound, "No prescriptions batch processed yet")
		return
	}

	records := h.dataStore.GetRecords()
	totalItems := len(records)
	maxPage := max(1, (totalItems+pageSize-1)/pageSize)

	if page > maxPage {
		h.RespondWithError(w, http.StatusNotFound, "Page not found")
		return
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, totalItems)

	h.RespondWithJSON(w, http.StatusOK, prescriptionsPage{
		Data:       records[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		MaxPage:    maxPage,
	})
}

// FindPrescription returns the record of one 1-based data row
func (h *HTTPHandlerImpl) FindPrescription(w http.ResponseWriter, r *http.Request) {
	row, err := h.validator.ValidateRow(chi.URLParam(r, "row"))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, ok := h.dataStore.GetRecord(row)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "Prescription not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, record)
}

// ServeReport returns the quality report of the latest batch
func (h *HTTPHandlerImpl) ServeReport(w http.ResponseWriter, r *http.Request) {
	report := h.dataStore.GetReport()
	if report == nil {
		h.RespondWithError(w, http.StatusNotFound, "No prescriptions batch processed yet")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, report)
}

// HealthCheck returns the service status with uptime
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.healthChecker.HealthCheck()

	var uptime time.Duration
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	h.RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          details,
	})
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
