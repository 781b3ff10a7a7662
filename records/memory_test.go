package records

import (
	"context"
	"testing"
	"time"
)

func TestSaveAndDecide(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	caseID, err := repo.SaveCaseRecord(ctx, "patient-1", []byte(`{"case":{}}`), []byte(`{"topRemedies":[]}`))
	if err != nil {
		t.Fatalf("SaveCaseRecord failed: %v", err)
	}
	if caseID == "" {
		t.Fatal("expected a non-empty case id")
	}

	if err := repo.RecordDoctorDecision(ctx, caseID, "acon"); err != nil {
		t.Fatalf("RecordDoctorDecision failed: %v", err)
	}
	if err := repo.RecordOutcome(ctx, caseID, "unfavorable"); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}
}

func TestDecisionUnknownCase(t *testing.T) {
	repo := NewMemoryRepository()

	if err := repo.RecordDoctorDecision(context.Background(), "missing", "acon"); err == nil {
		t.Error("expected error for unknown case id")
	}
}

func TestOutcomeValidation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	caseID, _ := repo.SaveCaseRecord(ctx, "patient-1", nil, nil)

	// Outcome before a decision is rejected.
	if err := repo.RecordOutcome(ctx, caseID, "favorable"); err == nil {
		t.Error("expected error for outcome without decision")
	}

	if err := repo.RecordDoctorDecision(ctx, caseID, "acon"); err != nil {
		t.Fatalf("RecordDoctorDecision failed: %v", err)
	}

	if err := repo.RecordOutcome(ctx, caseID, "miraculous"); err == nil {
		t.Error("expected error for invalid outcome value")
	}
	if err := repo.RecordOutcome(ctx, caseID, "favorable"); err != nil {
		t.Errorf("RecordOutcome failed: %v", err)
	}
}

func TestRecentUnfavorable(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	// Two decided cases for patient-1, one unfavorable and one favorable,
	// plus an unfavorable one for another patient.
	unfav, _ := repo.SaveCaseRecord(ctx, "patient-1", nil, nil)
	repo.RecordDoctorDecision(ctx, unfav, "acon")
	repo.RecordOutcome(ctx, unfav, "unfavorable")

	fav, _ := repo.SaveCaseRecord(ctx, "patient-1", nil, nil)
	repo.RecordDoctorDecision(ctx, fav, "ars")
	repo.RecordOutcome(ctx, fav, "favorable")

	other, _ := repo.SaveCaseRecord(ctx, "patient-2", nil, nil)
	repo.RecordDoctorDecision(ctx, other, "phos")
	repo.RecordOutcome(ctx, other, "unfavorable")

	decisions, err := repo.RecentUnfavorable(ctx, "patient-1", 90*24*time.Hour)
	if err != nil {
		t.Fatalf("RecentUnfavorable failed: %v", err)
	}

	if len(decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(decisions))
	}
	d := decisions[0]
	if d.RemedyID != "acon" || d.PatientID != "patient-1" || d.Outcome != "unfavorable" {
		t.Errorf("unexpected decision: %+v", d)
	}
	if d.CaseID != unfav {
		t.Errorf("CaseID = %s, want %s", d.CaseID, unfav)
	}
}

func TestRecentUnfavorableWindow(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	caseID, _ := repo.SaveCaseRecord(ctx, "patient-1", nil, nil)
	repo.RecordDoctorDecision(ctx, caseID, "acon")
	repo.RecordOutcome(ctx, caseID, "unfavorable")

	// Decision made just now falls outside a window ending in the past.
	decisions, err := repo.RecentUnfavorable(ctx, "patient-1", -time.Hour)
	if err != nil {
		t.Fatalf("RecentUnfavorable failed: %v", err)
	}
	if len(decisions) != 0 {
		t.Errorf("expected no decisions outside window, got %d", len(decisions))
	}
}

func TestRecentUnfavorableUnknownPatient(t *testing.T) {
	repo := NewMemoryRepository()

	decisions, err := repo.RecentUnfavorable(context.Background(), "nobody", time.Hour)
	if err != nil {
		t.Fatalf("RecentUnfavorable failed: %v", err)
	}
	if len(decisions) != 0 {
		t.Errorf("expected no decisions, got %d", len(decisions))
	}
}
