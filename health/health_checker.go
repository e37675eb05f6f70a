// Package health reports whether the normalizer has fresh batch data to serve.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/medications-normalizer/config"
	"github.com/giygas/medications-normalizer/interfaces"
	"github.com/giygas/medications-normalizer/medparser"
)

const (
	degradedAge  = 24 * time.Hour
	unhealthyAge = 48 * time.Hour
	stuckRunAge  = 6 * time.Hour
)

var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore  interfaces.DataStore
	vocabulary *medparser.Vocabulary
	schedule   []config.ClockTime
	now        func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies.
// A nil vocabulary reports the compiled-in defaults.
func NewHealthChecker(dataStore interfaces.DataStore, vocabulary *medparser.Vocabulary, schedule []config.ClockTime) *HealthCheckerImpl {
	if vocabulary == nil {
		vocabulary = medparser.DefaultVocabulary()
	}
	return &HealthCheckerImpl{
		dataStore:  dataStore,
		vocabulary: vocabulary,
		schedule:   schedule,
		now:        time.Now,
	}
}

// HealthCheck returns the status, the details for the /health body and the
// HTTP status to answer with. Only a batch older than 48h makes the service
// unhealthy, since parse endpoints keep working without any batch.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.now()
	batch := h.dataStore.GetBatch()
	isUpdating := h.dataStore.IsUpdating()

	data = map[string]any{
		"is_updating": isUpdating,
		"vocabulary": map[string]any{
			"ingredients":   h.vocabulary.IngredientCount(),
			"topical_terms": h.vocabulary.TopicalTermCount(),
			"form_suffixes": len(h.vocabulary.FormSuffixes()),
		},
	}

	if next := h.CalculateNextRun(); !next.IsZero() {
		data["next_run"] = next.Format(time.RFC3339)
	}

	if batch == nil {
		data["records"] = 0
		return "degraded", data, http.StatusOK
	}

	lastUpdate := h.dataStore.GetLastUpdated()
	dataAge := now.Sub(lastUpdate)

	data["last_update"] = lastUpdate.Format(time.RFC3339)
	data["data_age_hours"] = math.Round(dataAge.Hours()*10) / 10
	data["records"] = len(batch.Records)
	data["run_id"] = batch.RunID

	switch {
	case dataAge > unhealthyAge:
		return "unhealthy", data, http.StatusServiceUnavailable
	case dataAge > degradedAge:
		return "degraded", data, http.StatusOK
	case isUpdating && dataAge > stuckRunAge:
		return "degraded", data, http.StatusOK
	default:
		return "healthy", data, http.StatusOK
	}
}

// CalculateNextRun returns the next scheduled batch run, or the zero time
// when no schedule is configured
func (h *HealthCheckerImpl) CalculateNextRun() time.Time {
	return config.NextRun(h.now(), h.schedule)
}
