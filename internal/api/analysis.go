package api

import (
	"encoding/json"
	"net/http"

	"github.com/oddwes/ridesofjulian/internal/auth"
	"github.com/oddwes/ridesofjulian/internal/domain"
)

// AnalysisRequest is the payload for POST /v1/ride-analysis.
type AnalysisRequest struct {
	ActivityID      string          `json:"activity_id"`
	RideHistory     json.RawMessage `json:"ride_history,omitempty"`
	TrainingPlan    json.RawMessage `json:"training_plan,omitempty"`
	WorkoutPlan     json.RawMessage `json:"workout_plan,omitempty"`
	CurrentActivity json.RawMessage `json:"current_activity"`
}

// PlanRequest is the payload for POST /v1/plans.
type PlanRequest struct {
	StartDate string `json:"start_date"`
	Weeks     int    `json:"weeks"`
	Goal      string `json:"goal"`
}

// PlanResponse lists the rides added to the schedule.
type PlanResponse struct {
	Workouts []domain.RideWorkout `json:"workouts"`
}

func (h *Handler) generateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if !decodeBody(w, r, &req) {
		return
	}
	analysis, err := h.service.GenerateRideAnalysis(r.Context(), auth.SessionFromContext(r.Context()), domain.AnalysisRequest{
		ActivityID:      req.ActivityID,
		RideHistory:     req.RideHistory,
		TrainingPlan:    req.TrainingPlan,
		WorkoutPlan:     req.WorkoutPlan,
		CurrentActivity: req.CurrentActivity,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) getAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.service.GetRideAnalysis(r.Context(), auth.SessionFromContext(r.Context()), r.PathValue("activity_id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) generatePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "start_date must be YYYY-MM-DD")
		return
	}
	rides, err := h.service.GeneratePlan(r.Context(), auth.SessionFromContext(r.Context()), domain.PlanRequest{
		StartDate: start,
		Weeks:     req.Weeks,
		Goal:      req.Goal,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, PlanResponse{Workouts: rides})
}
