package data

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/giygas/medications-normalizer/medparser/entities"
)

func testBatch(runID string, rows int) *entities.BatchResult {
	records := make([]entities.PrescriptionRecord, rows)
	for i := range records {
		records[i] = entities.PrescriptionRecord{
			Row:            i + 1,
			MedicationText: fmt.Sprintf("Aspirin %dmg", (i+1)*100),
		}
	}
	return &entities.BatchResult{
		RunID:   runID,
		Records: records,
		Report:  &entities.QualityReport{TotalRows: rows},
	}
}

func TestNewDataContainer(t *testing.T) {
	dc := NewDataContainer()

	if dc == nil {
		t.Fatal("NewDataContainer returned nil")
	}

	// Test initial state
	if dc.IsUpdating() {
		t.Error("NewDataContainer should not be updating")
	}

	if !dc.GetLastUpdated().IsZero() {
		t.Error("NewDataContainer should have zero lastUpdated time")
	}

	if dc.GetBatch() != nil {
		t.Error("NewDataContainer should have no batch")
	}

	if dc.GetReport() != nil {
		t.Error("NewDataContainer should have no report")
	}

	if records := dc.GetRecords(); records == nil || len(records) != 0 {
		t.Error("NewDataContainer should return an empty, non-nil record list")
	}
}

func TestUpdateData(t *testing.T) {
	dc := NewDataContainer()
	before := time.Now()

	dc.UpdateData(testBatch("run-1", 3))

	batch := dc.GetBatch()
	if batch == nil || batch.RunID != "run-1" {
		t.Fatalf("Expected batch run-1, got %+v", batch)
	}

	if len(dc.GetRecords()) != 3 {
		t.Errorf("Expected 3 records, got %d", len(dc.GetRecords()))
	}

	if report := dc.GetReport(); report == nil || report.TotalRows != 3 {
		t.Errorf("Expected report with 3 rows, got %+v", report)
	}

	if dc.GetLastUpdated().Before(before) {
		t.Error("lastUpdated should be set by UpdateData")
	}
}

func TestUpdateDataIgnoresNil(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateData(testBatch("run-1", 1))
	updated := dc.GetLastUpdated()

	dc.UpdateData(nil)

	if dc.GetBatch() == nil || dc.GetBatch().RunID != "run-1" {
		t.Error("nil update should keep the previous batch")
	}
	if !dc.GetLastUpdated().Equal(updated) {
		t.Error("nil update should not touch lastUpdated")
	}
}

func TestGetRecord(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateData(testBatch("run-1", 3))

	testCases := []struct {
		row    int
		exists bool
	}{
		{0, false},
		{1, true},
		{3, true},
		{4, false},
		{-1, false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("row %d", tc.row), func(t *testing.T) {
			record, ok := dc.GetRecord(tc.row)
			if ok != tc.exists {
				t.Fatalf("GetRecord(%d) exists = %v, want %v", tc.row, ok, tc.exists)
			}
			if ok && record.Row != tc.row {
				t.Errorf("GetRecord(%d).Row = %d", tc.row, record.Row)
			}
		})
	}
}

func TestBeginEndUpdate(t *testing.T) {
	dc := NewDataContainer()

	if !dc.BeginUpdate() {
		t.Fatal("First BeginUpdate should succeed")
	}
	if !dc.IsUpdating() {
		t.Error("IsUpdating should be true after BeginUpdate")
	}
	if dc.BeginUpdate() {
		t.Error("Second BeginUpdate should fail while updating")
	}

	dc.EndUpdate()

	if dc.IsUpdating() {
		t.Error("IsUpdating should be false after EndUpdate")
	}
	if !dc.BeginUpdate() {
		t.Error("BeginUpdate should succeed after EndUpdate")
	}
}

func TestServerStartTime(t *testing.T) {
	dc := NewDataContainer()
	start := time.Now()

	dc.SetServerStartTime(start)

	if !dc.GetServerStartTime().Equal(start) {
		t.Errorf("GetServerStartTime() = %v, want %v", dc.GetServerStartTime(), start)
	}
}

func TestConcurrentReadsDuringUpdates(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateData(testBatch("run-0", 5))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			dc.UpdateData(testBatch(fmt.Sprintf("run-%d", i+1), 5+i))
		}()
		go func() {
			defer wg.Done()
			batch := dc.GetBatch()
			// Each batch is swapped as a whole, so its records always match its report
			if batch == nil || len(batch.Records) != batch.Report.TotalRows {
				t.Error("Observed an inconsistent batch")
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentBeginUpdate(t *testing.T) {
	dc := NewDataContainer()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if dc.BeginUpdate() {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("Expected exactly one BeginUpdate to succeed, got %d", winners)
	}
}
