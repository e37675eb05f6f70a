// Package data provides thread-safe storage for the latest processed
// prescriptions batch. The DataContainer swaps whole batches atomically so
// HTTP handlers keep serving the previous batch while a new one is built.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/medications-normalizer/interfaces"
	"github.com/giygas/medications-normalizer/logging"
	"github.com/giygas/medications-normalizer/medparser/entities"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the latest batch with atomic values for zero-downtime updates
type DataContainer struct {
	batch           atomic.Value // *entities.BatchResult
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer without a batch
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.batch.Store((*entities.BatchResult)(nil))
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{}) // Initialize with zero value
	return dc
}

// Thread-safe getters with type check

// GetBatch returns the latest batch, or nil before the first run
func (dc *DataContainer) GetBatch() *entities.BatchResult {
	if v := dc.batch.Load(); v != nil {
		if batch, ok := v.(*entities.BatchResult); ok {
			return batch
		}
	}

	logging.Warn("Batch is invalid")
	return nil
}

// GetRecords returns the records of the latest batch
func (dc *DataContainer) GetRecords() []entities.PrescriptionRecord {
	batch := dc.GetBatch()
	if batch == nil {
		return []entities.PrescriptionRecord{}
	}
	return batch.Records
}

// GetRecord returns the record for a 1-based data row
func (dc *DataContainer) GetRecord(row int) (entities.PrescriptionRecord, bool) {
	records := dc.GetRecords()
	if row < 1 || row > len(records) {
		return entities.PrescriptionRecord{}, false
	}
	return records[row-1], true
}

// GetReport returns the quality report of the latest batch
func (dc *DataContainer) GetReport() *entities.QualityReport {
	batch := dc.GetBatch()
	if batch == nil {
		return nil
	}
	return batch.Report
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a batch run is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically replaces the batch. A nil batch is ignored.
func (dc *DataContainer) UpdateData(batch *entities.BatchResult) {
	if batch == nil {
		logging.Warn("Ignoring nil batch update")
		return
	}

	// Atomic swap (zero downtime replacement)
	dc.batch.Store(batch)
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a batch run
// Returns true if the run can proceed, false if another run is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a batch run
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
