// Package handlers provides HTTP request handlers for the remedy suggestion
// API: the suggestion endpoint, remedy and rubric lookups, case decision
// recording, health checks, and response formatting with input validation
// and error handling.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/remedy-api/engine"
	"github.com/clinicore/remedy-api/interfaces"
	"github.com/clinicore/remedy-api/logging"
	"github.com/clinicore/remedy-api/metrics"
	"github.com/clinicore/remedy-api/narrative"
	"github.com/clinicore/remedy-api/repertory/entities"
	"github.com/clinicore/remedy-api/textnorm"
	"github.com/clinicore/remedy-api/validation"
)

// Deps bundles everything the handlers need. Records and Narrator are
// optional; nil disables case persistence and the prose summary.
type Deps struct {
	Store     interfaces.DataStore
	Engine    *engine.Engine
	Validator *validation.RequestValidator
	Records   interfaces.CaseRepository
	Narrator  narrative.Narrator
	Checker   interfaces.HealthChecker
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error body with an optional machine code.
func RespondWithError(w http.ResponseWriter, code int, errCode, msg string) {
	body := map[string]string{"error": msg}
	if errCode != "" {
		body["code"] = errCode
	}
	RespondWithJSON(w, code, body)
}

// Suggest runs the suggestion pipeline for a posted clinical case.
func Suggest(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.SuggestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
			return
		}

		if err := deps.Validator.ValidateSuggestRequest(&req); err != nil {
			logging.Warn("Rejected suggestion request", "error", err)
			RespondWithError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}

		snap := deps.Store.GetSnapshot()

		start := time.Now()
		resp, err := deps.Engine.Suggest(r.Context(), req, snap)
		metrics.SuggestionDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			respondSuggestError(w, err)
			return
		}

		metrics.SuggestionRequests.WithLabelValues("ok").Inc()
		metrics.SuggestionCandidates.Observe(float64(resp.Summary.TotalRemedies))

		if deps.Narrator != nil {
			// Normalization is pure and cheap, so rebuilding the case for
			// the narrator keeps the engine contract small.
			if nc, err := engine.NormalizeCase(req.Case, deps.Engine.Rules()); err == nil {
				resp.Narrative = deps.Narrator.Summarize(nc, resp.TopRemedies)
			}
		}

		if deps.Records != nil {
			persistCaseRecord(r, deps, &req, resp)
		}

		RespondWithJSON(w, http.StatusOK, resp)
	}
}

func respondSuggestError(w http.ResponseWriter, err error) {
	var weightErr *engine.InvalidWeightError

	switch {
	case errors.Is(err, engine.ErrEmptyCase):
		metrics.SuggestionRequests.WithLabelValues("empty_case").Inc()
		RespondWithError(w, http.StatusBadRequest, "empty_case", "A case must contain at least one symptom")

	case errors.As(err, &weightErr):
		metrics.SuggestionRequests.WithLabelValues("invalid_weight").Inc()
		RespondWithError(w, http.StatusBadRequest, "invalid_weight", weightErr.Error())

	case errors.Is(err, engine.ErrReferenceDataUnavailable):
		metrics.SuggestionRequests.WithLabelValues("reference_unavailable").Inc()
		RespondWithError(w, http.StatusServiceUnavailable, "reference_unavailable", "Reference data is unavailable, try again shortly")

	case errors.Is(err, engine.ErrNoMatches):
		metrics.SuggestionRequests.WithLabelValues("no_matches").Inc()
		RespondWithError(w, http.StatusNotFound, "no_matches", "No suggestions found, consider adding more particulars")

	default:
		metrics.SuggestionRequests.WithLabelValues("error").Inc()
		logging.Error("Suggestion pipeline failed", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "", "Internal server error")
	}
}

func persistCaseRecord(r *http.Request, deps Deps, req *engine.SuggestRequest, resp *engine.SuggestResponse) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		logging.Error("Failed to marshal case request for persistence", "error", err)
		return
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		logging.Error("Failed to marshal suggestion response for persistence", "error", err)
		return
	}

	caseID, err := deps.Records.SaveCaseRecord(r.Context(), req.PatientID, reqJSON, respJSON)
	if err != nil {
		// The suggestions are already computed; a persistence failure must
		// not turn a successful run into an error response.
		logging.Error("Failed to persist case record", "error", err)
		return
	}
	resp.CaseRecordID = caseID
}

// ListRemedies returns every remedy in the active snapshot.
func ListRemedies(store interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.GetSnapshot()
		RespondWithJSON(w, http.StatusOK, snap.Remedies)
	}
}

// FindRemedy returns one remedy by id.
func FindRemedy(store interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "remedyId")
		snap := store.GetSnapshot()

		remedy, exists := snap.RemediesByID[id]
		if !exists {
			RespondWithError(w, http.StatusNotFound, "", "Remedy not found")
			return
		}

		RespondWithJSON(w, http.StatusOK, remedy)
	}
}

// SearchRubrics searches rubric texts case-insensitively.
func SearchRubrics(store interfaces.DataStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := chi.URLParam(r, "term")
		if term == "" {
			RespondWithError(w, http.StatusBadRequest, "", "Missing search term")
			return
		}

		folded := textnorm.Fold(term)
		snap := store.GetSnapshot()

		var results []entities.Rubric
		for _, rubric := range snap.Rubrics {
			if strings.Contains(rubric.SearchText, folded) {
				results = append(results, rubric)
			}
		}

		if len(results) == 0 {
			RespondWithError(w, http.StatusNotFound, "", "No rubrics found")
			return
		}

		RespondWithJSON(w, http.StatusOK, results)
	}
}

// RecordDecision stores the doctor's chosen remedy for a persisted case.
func RecordDecision(repo interfaces.CaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			RespondWithError(w, http.StatusServiceUnavailable, "", "Case persistence is not configured")
			return
		}

		caseID := chi.URLParam(r, "caseId")

		var body struct {
			RemedyID string `json:"remedyId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.RemedyID) == "" {
			RespondWithError(w, http.StatusBadRequest, "", "Request must name a remedyId")
			return
		}

		if err := repo.RecordDoctorDecision(r.Context(), caseID, body.RemedyID); err != nil {
			RespondWithError(w, http.StatusNotFound, "", err.Error())
			return
		}

		RespondWithJSON(w, http.StatusOK, map[string]string{"caseId": caseID, "remedyId": body.RemedyID})
	}
}

// RecordOutcome stores the observed outcome for a decided case.
func RecordOutcome(repo interfaces.CaseRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			RespondWithError(w, http.StatusServiceUnavailable, "", "Case persistence is not configured")
			return
		}

		caseID := chi.URLParam(r, "caseId")

		var body struct {
			Outcome string `json:"outcome"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			RespondWithError(w, http.StatusBadRequest, "", "Invalid request body")
			return
		}

		if err := repo.RecordOutcome(r.Context(), caseID, body.Outcome); err != nil {
			RespondWithError(w, http.StatusBadRequest, "", err.Error())
			return
		}

		RespondWithJSON(w, http.StatusOK, map[string]string{"caseId": caseID, "outcome": body.Outcome})
	}
}

// HealthCheck returns server health information
func HealthCheck(checker interfaces.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, details, httpStatus := checker.HealthCheck()

		response := map[string]any{
			"status":      status,
			"data":        details,
			"next_update": checker.CalculateNextUpdate().Format(time.RFC3339),
		}

		RespondWithJSON(w, httpStatus, response)
	}
}
