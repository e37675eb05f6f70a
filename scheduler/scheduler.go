// Package scheduler re-processes the prescriptions file on a daily schedule
// and publishes each completed batch to the data store.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/giygas/medications-normalizer/config"
	"github.com/giygas/medications-normalizer/interfaces"
	"github.com/giygas/medications-normalizer/logging"
	"github.com/giygas/medications-normalizer/medparser/entities"
	"github.com/go-co-op/gocron"
)

const (
	healthCheckInterval = time.Hour
	staleDataThreshold  = 25 * time.Hour
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles batch runs and freshness monitoring using dependency injection
type Scheduler struct {
	dataStore  interfaces.DataStore
	processor  interfaces.BatchProcessor
	inputPath  string
	outputPath string
	schedule   []config.ClockTime
	scheduler  *gocron.Scheduler

	stop     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, processor interfaces.BatchProcessor, inputPath, outputPath string, schedule []config.ClockTime) *Scheduler {
	return &Scheduler{
		dataStore:  dataStore,
		processor:  processor,
		inputPath:  inputPath,
		outputPath: outputPath,
		schedule:   schedule,
		scheduler:  gocron.NewScheduler(time.Local),
		stop:       make(chan struct{}),
	}
}

// Start runs an initial batch, schedules the recurring runs and starts the
// freshness monitor. A missing input file is not fatal so the parse
// endpoints can be served before any prescriptions exist.
func (s *Scheduler) Start() error {
	if len(s.schedule) == 0 {
		return errors.New("no processing times scheduled")
	}

	if err := s.runBatch(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Error("Failed to perform initial batch run", "error", err)
			return fmt.Errorf("initial batch run failed: %w", err)
		}
		logging.Warn("Prescriptions input not found, waiting for the next scheduled run", "input", s.inputPath)
	}

	_, err := s.scheduler.Every(1).Days().At(config.FormatSchedule(s.schedule)).Do(func() {
		if err := s.runBatch(); err != nil {
			logging.Error("Failed to process prescriptions", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule batch runs", "error", err)
		return fmt.Errorf("failed to schedule batch runs: %w", err)
	}

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	logging.Info("Scheduler started", "schedule", config.FormatSchedule(s.schedule))
	return nil
}

// Stop stops the scheduled runs and the freshness monitor
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.scheduler.Stop()
	})
}

// runBatch processes the input file and swaps the result into the data store.
// It is a no-op when another run holds the update flag.
func (s *Scheduler) runBatch() error {
	if !s.dataStore.BeginUpdate() {
		logging.Info("Batch run already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info("Starting prescriptions batch run", "input", s.inputPath, "output", s.outputPath)

	batch, err := s.processor.ProcessFile(context.Background(), s.inputPath, s.outputPath)
	if err != nil {
		return err
	}

	logQualityReport(batch.Report)
	s.dataStore.UpdateData(batch)

	logging.Info("Batch run completed",
		"run_id", batch.RunID,
		"rows", len(batch.Records),
		"duration", batch.Duration.String(),
	)
	return nil
}

func logQualityReport(report *entities.QualityReport) {
	if report == nil {
		return
	}

	if report.MissingIngredient > 0 {
		logging.Warn("Rows without an active ingredient",
			"count", report.MissingIngredient,
			"rows", report.MissingIngredientRows,
		)
	}

	if report.UnmatchedIngredients > 0 {
		logging.Warn("Ingredients not found in the mapping table",
			"count", report.UnmatchedIngredients,
			"names", report.UnmatchedNames,
		)
	}

	if report.MissingDosage > 0 {
		logging.Info("Rows without a dosage",
			"count", report.MissingDosage,
			"rows", report.MissingDosageRows,
		)
	}

	if report.UnparsedDates > 0 {
		logging.Warn("Prescription dates that could not be parsed",
			"count", report.UnparsedDates,
			"rows", report.UnparsedDateRows,
		)
	}
}

// startHealthMonitoring warns when no batch has completed for too long
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.checkFreshness(time.Now())
			}
		}
	}()
}

// checkFreshness reports whether the last batch is recent enough
func (s *Scheduler) checkFreshness(now time.Time) bool {
	if s.dataStore.GetBatch() == nil {
		logging.Warn("No prescriptions batch has been processed yet")
		return false
	}

	if now.Sub(s.dataStore.GetLastUpdated()) > staleDataThreshold {
		logging.Warn("Prescriptions haven't been processed in over 25 hours")
		return false
	}
	return true
}
