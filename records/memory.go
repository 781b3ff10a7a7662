package records

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/remedy-api/interfaces"
)

// Compile-time check to ensure MemoryRepository implements CaseRepository
var _ interfaces.CaseRepository = (*MemoryRepository)(nil)

type memoryRecord struct {
	patientID    string
	request      []byte
	response     []byte
	chosenRemedy string
	outcome      string
	decidedAt    time.Time
	outcomeNoted time.Time
}

// MemoryRepository keeps case records in memory. Used in tests and in
// deployments without a DATABASE_URL, where records do not survive restarts.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*memoryRecord)}
}

func (r *MemoryRepository) SaveCaseRecord(_ context.Context, patientID string, request, response []byte) (string, error) {
	caseID := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[caseID] = &memoryRecord{
		patientID: patientID,
		request:   request,
		response:  response,
	}
	return caseID, nil
}

func (r *MemoryRepository) RecordDoctorDecision(_ context.Context, caseID, remedyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[caseID]
	if !ok {
		return fmt.Errorf("case record %s not found", caseID)
	}
	rec.chosenRemedy = remedyID
	rec.decidedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) RecordOutcome(_ context.Context, caseID, outcomeStatus string) error {
	if outcomeStatus != "favorable" && outcomeStatus != "unfavorable" {
		return fmt.Errorf("invalid outcome %q: must be favorable or unfavorable", outcomeStatus)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[caseID]
	if !ok || rec.chosenRemedy == "" {
		return fmt.Errorf("case record %s not found or has no decision", caseID)
	}
	rec.outcome = outcomeStatus
	rec.outcomeNoted = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) RecentUnfavorable(_ context.Context, patientID string, window time.Duration) ([]interfaces.CaseDecision, error) {
	cutoff := time.Now().UTC().Add(-window)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var decisions []interfaces.CaseDecision
	for caseID, rec := range r.records {
		if rec.patientID != patientID || rec.outcome != "unfavorable" || rec.decidedAt.Before(cutoff) {
			continue
		}
		decisions = append(decisions, interfaces.CaseDecision{
			CaseID:       caseID,
			PatientID:    rec.patientID,
			RemedyID:     rec.chosenRemedy,
			Outcome:      rec.outcome,
			DecidedAt:    rec.decidedAt,
			OutcomeNoted: rec.outcomeNoted,
		})
	}

	sort.Slice(decisions, func(i, j int) bool {
		return decisions[i].DecidedAt.After(decisions[j].DecidedAt)
	})
	return decisions, nil
}
