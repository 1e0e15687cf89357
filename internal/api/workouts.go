package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/oddwes/ridesofjulian/internal/auth"
	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/persistence"
)

// WorkoutRequest is the payload for POST and PUT /v1/workouts.
type WorkoutRequest struct {
	PerformedAt time.Time         `json:"performed_at"`
	Exercises   []domain.Exercise `json:"exercises"`
}

func (r WorkoutRequest) input() domain.WorkoutInput {
	return domain.WorkoutInput{PerformedAt: r.PerformedAt, Exercises: r.Exercises}
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []domain.GymWorkout `json:"items"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := domain.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	items, next, err := h.service.ListWorkouts(r.Context(), auth.SessionFromContext(r.Context()), cursor, limit)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.GymWorkout{}
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{Items: items, NextCursor: persistence.EncodeCursor(next)})
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := h.service.GetWorkout(r.Context(), auth.SessionFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	var req WorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	workout, err := h.service.CreateWorkout(r.Context(), auth.SessionFromContext(r.Context()), req.input())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (h *Handler) updateWorkout(w http.ResponseWriter, r *http.Request) {
	var req WorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	workout, err := h.service.UpdateWorkout(r.Context(), auth.SessionFromContext(r.Context()), r.PathValue("id"), req.input())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteWorkout(r.Context(), auth.SessionFromContext(r.Context()), r.PathValue("id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
