// Package scheduler coordinates reference-data reloads for the remedy API.
// It performs the initial snapshot load, schedules a nightly full reload,
// exposes Reload as the external invalidation signal and monitors snapshot
// staleness.
package scheduler

import (
	"fmt"
	"time"

	"github.com/clinicore/remedy-api/interfaces"
	"github.com/clinicore/remedy-api/logging"
	"github.com/clinicore/remedy-api/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles snapshot reloads and health monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	parser    interfaces.RepertoryParser
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.RepertoryParser) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		parser:    parser,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial load, schedules the nightly reload and starts
// staleness monitoring.
func (s *Scheduler) Start() error {
	if err := s.Reload(); err != nil {
		logging.Error("Failed to perform initial reference data load", "error", err)
		return fmt.Errorf("initial reference data load failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At("03:00").Do(func() {
		if err := s.Reload(); err != nil {
			logging.Error("Failed to reload reference data", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule reference data reloads", "error", err)
		return fmt.Errorf("failed to schedule reloads: %w", err)
	}

	s.scheduler.StartAsync()

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Reload rebuilds the snapshot from source and swaps it in atomically.
// Called on schedule and when an external invalidation signal arrives;
// concurrent reloads collapse into one.
func (s *Scheduler) Reload() error {
	if !s.dataStore.BeginUpdate() {
		logging.Info("Reference data reload already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info("Starting reference data reload")
	start := time.Now()

	snap, err := s.parser.ParseSnapshot()
	if err != nil {
		logging.Error("Failed to parse reference data", "error", err)
		return fmt.Errorf("failed to parse reference data: %w", err)
	}

	if snap.Empty() {
		// Keep serving the previous snapshot rather than swapping in an
		// unusable one.
		logging.Error("Parsed reference data is empty, keeping previous snapshot",
			"rubrics", len(snap.Rubrics), "remedies", len(snap.Remedies))
		return fmt.Errorf("parsed reference data is empty")
	}

	s.dataStore.UpdateSnapshot(snap)

	metrics.RubricsLoaded.Set(float64(len(snap.Rubrics)))
	metrics.RemediesLoaded.Set(float64(len(snap.Remedies)))

	elapsed := time.Since(start)
	logging.Info("Reference data reload completed",
		"duration", elapsed.String(),
		"rubric_count", len(snap.Rubrics),
		"remedy_count", len(snap.Remedies),
		"max_grade", snap.MaxGrade)

	return nil
}

// startHealthMonitoring warns when the snapshot has not been refreshed.
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.dataStore.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Reference data hasn't been refreshed in over 25 hours")
			}
		}
	}()
}
