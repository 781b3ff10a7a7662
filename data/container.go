// Package data provides thread-safe storage for the repertory reference data.
// The whole snapshot is held behind a single atomic pointer: reloads build a
// complete replacement and swap it in, so suggestion requests in flight keep
// reading the snapshot they started with and never observe a partial update.
package data

import (
	"sync/atomic"
	"time"

	"github.com/clinicore/remedy-api/interfaces"
	"github.com/clinicore/remedy-api/logging"
	"github.com/clinicore/remedy-api/repertory"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the current reference-data snapshot with atomic
// pointers for zero-downtime updates.
type DataContainer struct {
	snapshot        atomic.Value // *repertory.Snapshot
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with an empty snapshot.
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.snapshot.Store(repertory.Build(nil, nil))
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// GetSnapshot returns the current reference-data snapshot. The returned
// snapshot is immutable and stays valid for the remainder of a request even
// if a reload swaps in a newer one meanwhile.
func (dc *DataContainer) GetSnapshot() *repertory.Snapshot {
	if v := dc.snapshot.Load(); v != nil {
		if snap, ok := v.(*repertory.Snapshot); ok {
			return snap
		}
	}

	logging.Warn("Reference data snapshot is empty or invalid")
	return repertory.Build(nil, nil)
}

// GetLastUpdated returns the timestamp of the last snapshot swap.
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a reference-data reload is in progress.
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time.
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time.
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateSnapshot atomically replaces the reference-data snapshot.
func (dc *DataContainer) UpdateSnapshot(snap *repertory.Snapshot) {
	dc.snapshot.Store(snap)
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a reload.
// Returns true if the reload can proceed, false if another one is running.
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload.
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
