// Package records persists case records: the computed suggestion set, the
// doctor's eventual decision and its outcome. The suggestion pipeline never
// touches this package mid-run; records are written after a response is
// computed and read back as history on later runs for the same patient.
package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/clinicore/remedy-api/interfaces"
)

// Compile-time check to ensure PostgresRepository implements CaseRepository
var _ interfaces.CaseRepository = (*PostgresRepository)(nil)

// PostgresRepository stores case records in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening case record store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging case record store: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepository wraps an existing connection pool.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close releases the underlying pool.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SaveCaseRecord stores the raw request and computed response and returns the
// new case record id.
func (r *PostgresRepository) SaveCaseRecord(ctx context.Context, patientID string, request, response []byte) (string, error) {
	caseID := uuid.NewString()

	query := `
		INSERT INTO case_records (id, patient_id, request, response, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, caseID, patientID, request, response, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("saving case record: %w", err)
	}

	return caseID, nil
}

// RecordDoctorDecision stores the remedy the doctor chose for a case.
func (r *PostgresRepository) RecordDoctorDecision(ctx context.Context, caseID, remedyID string) error {
	query := `
		UPDATE case_records
		SET chosen_remedy = $2, decided_at = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, caseID, remedyID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording decision: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("case record %s not found", caseID)
	}
	return nil
}

// RecordOutcome stores the observed outcome for a decided case.
func (r *PostgresRepository) RecordOutcome(ctx context.Context, caseID, outcomeStatus string) error {
	if outcomeStatus != "favorable" && outcomeStatus != "unfavorable" {
		return fmt.Errorf("invalid outcome %q: must be favorable or unfavorable", outcomeStatus)
	}

	query := `
		UPDATE case_records
		SET outcome = $2, outcome_noted_at = $3
		WHERE id = $1 AND chosen_remedy IS NOT NULL
	`
	res, err := r.db.ExecContext(ctx, query, caseID, outcomeStatus, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("case record %s not found or has no decision", caseID)
	}
	return nil
}

// RecentUnfavorable returns the patient's decisions inside the window whose
// recorded outcome was unfavorable, newest first.
func (r *PostgresRepository) RecentUnfavorable(ctx context.Context, patientID string, window time.Duration) ([]interfaces.CaseDecision, error) {
	query := `
		SELECT id, patient_id, chosen_remedy, outcome, decided_at, outcome_noted_at
		FROM case_records
		WHERE patient_id = $1
		  AND outcome = 'unfavorable'
		  AND decided_at >= $2
		ORDER BY decided_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, patientID, time.Now().UTC().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("querying recent decisions: %w", err)
	}
	defer rows.Close()

	var decisions []interfaces.CaseDecision
	for rows.Next() {
		var d interfaces.CaseDecision
		var outcomeNoted sql.NullTime
		if err := rows.Scan(&d.CaseID, &d.PatientID, &d.RemedyID, &d.Outcome, &d.DecidedAt, &outcomeNoted); err != nil {
			return nil, fmt.Errorf("scanning decision row: %w", err)
		}
		if outcomeNoted.Valid {
			d.OutcomeNoted = outcomeNoted.Time
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}
