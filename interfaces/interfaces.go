// Package interfaces defines core abstractions for the remedy suggestion API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"time"

	"github.com/clinicore/remedy-api/repertory"
)

// DataStore defines the contract for reference-data storage. It provides
// thread-safe access to the repertory snapshot with atomic swaps for
// zero-downtime reloads.
type DataStore interface {
	GetSnapshot() *repertory.Snapshot
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateSnapshot(snap *repertory.Snapshot)
	BeginUpdate() bool
	EndUpdate()
}

// RepertoryParser defines the contract for loading reference data from its
// external source into a complete snapshot.
type RepertoryParser interface {
	ParseSnapshot() (*repertory.Snapshot, error)
}

// Scheduler defines the contract for reference-data reload scheduling and
// health monitoring.
type Scheduler interface {
	Start() error
	Stop()

	// Reload forces a full snapshot rebuild outside the schedule. Used as the
	// external invalidation signal (SIGHUP).
	Reload() error
}

// CaseDecision is a doctor's recorded choice for a persisted case.
type CaseDecision struct {
	CaseID       string
	PatientID    string
	RemedyID     string
	Outcome      string // "", "favorable" or "unfavorable"
	DecidedAt    time.Time
	OutcomeNoted time.Time
}

// CaseRepository defines the contract for case-record persistence. The
// engine never calls it mid-pipeline: records are written after a suggestion
// set is computed and read before the next run for the same patient.
type CaseRepository interface {
	SaveCaseRecord(ctx context.Context, patientID string, request, response []byte) (caseID string, err error)
	RecordDoctorDecision(ctx context.Context, caseID, remedyID string) error
	RecordOutcome(ctx context.Context, caseID, outcomeStatus string) error

	// RecentUnfavorable returns decisions for the patient inside the recency
	// window whose recorded outcome was unfavorable. Feeds the advisory
	// repetition warning.
	RecentUnfavorable(ctx context.Context, patientID string, window time.Duration) ([]CaseDecision, error)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
	CalculateNextUpdate() time.Time
}

// RequestValidator defines the contract for inbound request validation.
type RequestValidator interface {
	ValidateText(field, input string) error
	ValidateTag(tag string) error
}
