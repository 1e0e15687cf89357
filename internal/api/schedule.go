package api

import (
	"net/http"

	"github.com/oddwes/ridesofjulian/internal/auth"
	"github.com/oddwes/ridesofjulian/internal/domain"
)

// RideRequest is the payload for adding or editing a scheduled ride.
type RideRequest struct {
	Title      string            `json:"title"`
	Intervals  []domain.Interval `json:"intervals"`
	ExternalID string            `json:"external_id,omitempty"`
}

func (r RideRequest) ride(id string) domain.RideWorkout {
	return domain.RideWorkout{ID: id, Title: r.Title, Intervals: r.Intervals, ExternalID: r.ExternalID}
}

// ScheduleResponse lists schedule rows in date order.
type ScheduleResponse struct {
	Items []domain.ScheduleRow `json:"items"`
}

func (h *Handler) listSchedule(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, err := domain.ParseDate(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "from must be YYYY-MM-DD")
		return
	}
	to, err := domain.ParseDate(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "to must be YYYY-MM-DD")
		return
	}

	rows, err := h.service.ListSchedule(r.Context(), auth.SessionFromContext(r.Context()), from, to)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.ScheduleRow{}
	}
	writeJSON(w, http.StatusOK, ScheduleResponse{Items: rows})
}

func (h *Handler) addRide(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(r.PathValue("date"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req RideRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ride, err := h.service.AddRide(r.Context(), auth.SessionFromContext(r.Context()), date, req.ride(""))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ride)
}

func (h *Handler) editRide(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(r.PathValue("date"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	var req RideRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ride, err := h.service.EditRide(r.Context(), auth.SessionFromContext(r.Context()), date, req.ride(r.PathValue("id")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

func (h *Handler) deleteRide(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(r.PathValue("date"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.service.DeleteRide(r.Context(), auth.SessionFromContext(r.Context()), date, r.PathValue("id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pushRide sends a scheduled ride to the user's Wahoo account and stores the
// returned workout id as the ride's external id. Pushing a linked ride again
// updates the same workout.
func (h *Handler) pushRide(w http.ResponseWriter, r *http.Request) {
	if h.pusher == nil {
		writeError(w, http.StatusNotFound, "not_found", "no provider accepts planned rides")
		return
	}
	date, err := domain.ParseDate(r.PathValue("date"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	session := auth.SessionFromContext(r.Context())
	ride, err := h.service.Ride(r.Context(), session, date, r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	externalID, err := h.pusher.PushRide(r.Context(), session, *ride)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	ride.ExternalID = externalID
	linked, err := h.service.EditRide(r.Context(), session, date, *ride)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, linked)
}
